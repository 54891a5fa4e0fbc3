package cache

import (
	"context"
	"testing"
	"time"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	Use(nil, "")

	var dest map[string]string
	hit, err := GetJSON(context.Background(), ProductKey("tee"), &dest)
	if err != nil || hit {
		t.Fatalf("disabled cache should miss without error, hit=%v err=%v", hit, err)
	}
	if err := SetJSON(context.Background(), "k", "v", time.Minute); err != nil {
		t.Fatalf("disabled set should be noop: %v", err)
	}
	if err := InvalidateProducts(context.Background(), "tee", ""); err != nil {
		t.Fatalf("disabled invalidate should be noop: %v", err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	Use(nil, "shop")
	if got := BuildKey(ProductKey("linen-tee")); got != "shop:catalog:product:linen-tee" {
		t.Fatalf("unexpected key: %s", got)
	}
	Use(nil, "")
	if got := BuildKey(""); got != defaultPrefix {
		t.Fatalf("empty key should map to prefix, got %s", got)
	}
}
