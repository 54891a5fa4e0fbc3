package service

import (
	"errors"
	"testing"

	"github.com/threadhouse/internal/cart"
	"github.com/threadhouse/internal/models"
)

func TestCartServiceAddClampsToVariantStock(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "linen-tee", 1499,
		models.ProductVariant{Size: "M", Color: "White", Stock: 3},
		models.ProductVariant{Size: "L", Color: "White", Stock: 5},
	)

	env.addToCart(t, "sess-1", product, "M", "White", 2)
	view := env.addToCart(t, "sess-1", product, "M", "White", 2)
	if len(view.Items) != 1 {
		t.Fatalf("expected merged line, got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 3 || view.Items[0].MaxQuantity != 3 {
		t.Fatalf("expected clamp to stock 3, got qty=%d max=%d", view.Items[0].Quantity, view.Items[0].MaxQuantity)
	}
	if view.Items[0].LineTotal.String() != "4497.00" {
		t.Fatalf("unexpected line total: %s", view.Items[0].LineTotal.String())
	}

	// 重新加载后数据一致
	reloaded, err := env.carts.Get("sess-1")
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if reloaded.ItemCount != 3 {
		t.Fatalf("expected 3 items after reload, got %d", reloaded.ItemCount)
	}
}

func TestCartServiceTotalsScenarios(t *testing.T) {
	env := newTestEnv(t)
	premium := env.createProduct(t, "premium", 1499, models.ProductVariant{Size: "M", Color: "Black", Stock: 10})
	basic := env.createProduct(t, "basic", 500, models.ProductVariant{Size: "S", Color: "Blue", Stock: 10})

	a := env.addToCart(t, "sess-a", premium, "M", "Black", 2)
	if a.Totals.Subtotal.String() != "2998" || !a.Totals.Shipping.IsZero() ||
		a.Totals.Tax.String() != "539.64" || a.Totals.Total.String() != "3537.64" {
		t.Fatalf("scenario A totals mismatch: %+v", a.Totals)
	}

	b := env.addToCart(t, "sess-b", basic, "S", "Blue", 1)
	if b.Totals.Subtotal.String() != "500" || b.Totals.Shipping.String() != "99" ||
		b.Totals.Tax.String() != "90" || b.Totals.Total.String() != "689" {
		t.Fatalf("scenario B totals mismatch: %+v", b.Totals)
	}
}

func TestCartServiceRejectsUnknownVariant(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tee", 999, models.ProductVariant{Size: "M", Color: "White", Stock: 3})

	_, err := env.carts.AddItem(AddCartItemInput{SessionID: "s", ProductID: product.ID, Size: "XL", Color: "White", Quantity: 1})
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
	_, err = env.carts.AddItem(AddCartItemInput{SessionID: "s", ProductID: 9999, Size: "M", Color: "White", Quantity: 1})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
	_, err = env.carts.AddItem(AddCartItemInput{SessionID: "", ProductID: product.ID, Size: "M", Color: "White", Quantity: 1})
	if !errors.Is(err, ErrCartSessionRequired) {
		t.Fatalf("expected session required, got %v", err)
	}
	var verr *ValidationError
	_, err = env.carts.AddItem(AddCartItemInput{SessionID: "s", ProductID: product.ID, Size: "M", Color: "White", Quantity: 0})
	if !errors.As(err, &verr) || verr.Field != "quantity" {
		t.Fatalf("expected quantity validation error, got %v", err)
	}
}

func TestCartServiceOutOfStockAddIsNoop(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "sold-out", 999, models.ProductVariant{Size: "M", Color: "White", Stock: 0})

	view := env.addToCart(t, "sess", product, "M", "White", 1)
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", view.Items)
	}
}

func TestCartServiceUpdateAndRemove(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tee", 999,
		models.ProductVariant{Size: "M", Color: "White", Stock: 4},
		models.ProductVariant{Size: "M", Color: "Black", Stock: 4},
	)
	env.addToCart(t, "sess", product, "M", "White", 1)
	env.addToCart(t, "sess", product, "M", "Black", 1)
	key := cart.LineKey{ProductID: product.ID, Size: "M", Color: "White"}

	view, err := env.carts.UpdateQuantity(UpdateCartItemInput{SessionID: "sess", Key: key, Quantity: 10})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if view.Items[0].Quantity != 4 {
		t.Fatalf("expected clamp to 4, got %d", view.Items[0].Quantity)
	}
	if view.Items[0].Color != "White" || view.Items[1].Color != "Black" {
		t.Fatalf("insertion order not preserved: %+v", view.Items)
	}

	view, err = env.carts.UpdateQuantity(UpdateCartItemInput{SessionID: "sess", Key: key, Quantity: 0})
	if err != nil {
		t.Fatalf("update to zero failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Color != "Black" {
		t.Fatalf("expected white line removed, got %+v", view.Items)
	}

	if _, err := env.carts.UpdateQuantity(UpdateCartItemInput{SessionID: "sess", Key: key, Quantity: 1}); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	view, err = env.carts.RemoveItem("sess", key)
	if err != nil || len(view.Items) != 1 {
		t.Fatalf("remove of absent line should be a no-op: %v %+v", err, view)
	}

	if err := env.carts.Clear("sess"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	view, _ = env.carts.Get("sess")
	if len(view.Items) != 0 || !view.Totals.Total.IsZero() {
		t.Fatalf("expected empty cart after clear: %+v", view)
	}
}

func TestCartServiceGetRefreshesStockCeiling(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tee", 999, models.ProductVariant{Size: "M", Color: "White", Stock: 5})
	env.addToCart(t, "sess", product, "M", "White", 2)

	variantID := product.Variants[0].ID
	if _, err := env.variants.DecrementStock(variantID, 4); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	view, err := env.carts.Get("sess")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Items[0].MaxQuantity != 1 {
		t.Fatalf("expected refreshed ceiling 1, got %d", view.Items[0].MaxQuantity)
	}
	// 数量只在结算时校验，不在读取时截断
	if view.Items[0].Quantity != 2 {
		t.Fatalf("quantity must not be truncated on read, got %d", view.Items[0].Quantity)
	}
}
