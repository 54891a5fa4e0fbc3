package service

import (
	"strings"

	"github.com/threadhouse/internal/cart"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/pricing"
	"github.com/threadhouse/internal/repository"
	"github.com/threadhouse/internal/variant"

	"gorm.io/gorm"
)

// CartLineView 购物车行项（用于响应）
type CartLineView struct {
	cart.LineItem
	LineTotal models.Money `json:"line_total"`
}

// CartView 购物车与实时计价
type CartView struct {
	SessionID string         `json:"session_id"`
	Items     []CartLineView `json:"items"`
	ItemCount int            `json:"item_count"`
	Currency  string         `json:"currency"`
	Totals    pricing.Totals `json:"totals"`
}

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	SessionID  string
	ProductID  uint
	Size       string
	Color      string
	SleeveType string
	Fit        string
	Quantity   int
}

// UpdateCartItemInput 修改购物车数量输入
type UpdateCartItemInput struct {
	SessionID string
	Key       cart.LineKey
	Quantity  int
}

// CartService 会话购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	variantRepo repository.ProductVariantRepository
	pricing     pricing.Options
	currency    string
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, variantRepo repository.ProductVariantRepository, pricingOpts pricing.Options, currency string) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		pricing:     pricingOpts,
		currency:    currency,
	}
}

// Get 获取购物车，库存上限按当前库存刷新
func (s *CartService) Get(sessionID string) (*CartView, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrCartSessionRequired
	}
	c, err := s.load(s.cartRepo, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshStock(s.variantRepo, c); err != nil {
		return nil, err
	}
	return s.view(sessionID, c), nil
}

// AddItem 加入购物车：解析完整规格组合，数量累加并截断到库存
func (s *CartService) AddItem(input AddCartItemInput) (*CartView, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, ErrCartSessionRequired
	}
	if input.ProductID == 0 {
		return nil, newValidationError("product_id", "required")
	}
	if input.Quantity <= 0 {
		return nil, newValidationError("quantity", "must be positive")
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	selection := variant.Selection{
		variant.Color:      strings.TrimSpace(input.Color),
		variant.SleeveType: strings.TrimSpace(input.SleeveType),
		variant.Size:       strings.TrimSpace(input.Size),
		variant.Fit:        strings.TrimSpace(input.Fit),
	}
	resolved, ok := variant.ResolveVariant(toVariants(product.Variants), selection)
	if !ok {
		return nil, ErrVariantNotFound
	}
	line := cart.LineItem{
		ProductID:   product.ID,
		VariantID:   resolved.ID,
		Name:        product.Name,
		Image:       product.PrimaryImage(),
		Size:        resolved.Size,
		Color:       resolved.Color,
		SleeveType:  resolved.SleeveType,
		Fit:         resolved.Fit,
		UnitPrice:   product.PriceAmount.Decimal,
		Quantity:    input.Quantity,
		MaxQuantity: variant.MaxQuantity(resolved),
	}

	var out *CartView
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		c, err := s.load(repo, sessionID)
		if err != nil {
			return err
		}
		c.Add(line)
		if err := s.save(repo, sessionID, c); err != nil {
			return err
		}
		out = s.view(sessionID, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateQuantity 修改行项数量，<=0 删除
func (s *CartService) UpdateQuantity(input UpdateCartItemInput) (*CartView, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, ErrCartSessionRequired
	}
	var out *CartView
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		c, err := s.load(repo, sessionID)
		if err != nil {
			return err
		}
		item, ok := c.Find(input.Key)
		if !ok {
			return ErrCartItemNotFound
		}
		live, err := s.variantRepo.WithTx(tx).GetByID(item.VariantID)
		if err != nil {
			return err
		}
		stock := 0
		if live != nil {
			stock = live.Stock
		}
		c.SetStock(input.Key, stock)
		c.UpdateQuantity(input.Key, input.Quantity)
		if err := s.save(repo, sessionID, c); err != nil {
			return err
		}
		out = s.view(sessionID, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveItem 删除行项，不存在时无操作
func (s *CartService) RemoveItem(sessionID string, key cart.LineKey) (*CartView, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrCartSessionRequired
	}
	var out *CartView
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		c, err := s.load(repo, sessionID)
		if err != nil {
			return err
		}
		if c.Remove(key) {
			if err := s.save(repo, sessionID, c); err != nil {
				return err
			}
		}
		out = s.view(sessionID, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Clear 清空购物车
func (s *CartService) Clear(sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrCartSessionRequired
	}
	return s.cartRepo.ClearBySession(sessionID)
}

func (s *CartService) load(repo repository.CartRepository, sessionID string) (*cart.Cart, error) {
	return loadCart(repo, sessionID)
}

func (s *CartService) save(repo repository.CartRepository, sessionID string, c *cart.Cart) error {
	return saveCart(repo, sessionID, c)
}

// saveCart 以购物车当前行项覆盖会话记录
func saveCart(repo repository.CartRepository, sessionID string, c *cart.Cart) error {
	items := c.Items()
	rows := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.CartItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Size:        item.Size,
			Color:       item.Color,
			SleeveType:  item.SleeveType,
			Fit:         item.Fit,
			Name:        item.Name,
			Image:       item.Image,
			UnitPrice:   models.Money{Decimal: item.UnitPrice},
			Quantity:    item.Quantity,
			MaxQuantity: item.MaxQuantity,
		})
	}
	return repo.ReplaceSession(sessionID, rows)
}

// refreshStock 只刷新库存上限，不改动数量
func (s *CartService) refreshStock(variantRepo repository.ProductVariantRepository, c *cart.Cart) error {
	items := c.Items()
	if len(items) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariantID)
	}
	rows, err := variantRepo.ListByIDs(ids)
	if err != nil {
		return err
	}
	stock := make(map[uint]int, len(rows))
	for _, row := range rows {
		stock[row.ID] = row.Stock
	}
	for _, item := range items {
		c.SetStock(item.Key(), stock[item.VariantID])
	}
	return nil
}

func (s *CartService) view(sessionID string, c *cart.Cart) *CartView {
	items := c.Items()
	lines := make([]CartLineView, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLineView{
			LineItem:  item,
			LineTotal: models.NewMoneyFromDecimal(item.LineTotal()),
		})
	}
	return &CartView{
		SessionID: sessionID,
		Items:     lines,
		ItemCount: c.ItemCount(),
		Currency:  s.currency,
		Totals:    pricing.ComputeTotals(c.Lines(), s.pricing).Rounded(),
	}
}

// loadCart 从会话行项重建购物车
func loadCart(repo repository.CartRepository, sessionID string) (*cart.Cart, error) {
	rows, err := repo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}
	items := make([]cart.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, cart.LineItem{
			ProductID:   row.ProductID,
			VariantID:   row.VariantID,
			Name:        row.Name,
			Image:       row.Image,
			Size:        row.Size,
			Color:       row.Color,
			SleeveType:  row.SleeveType,
			Fit:         row.Fit,
			UnitPrice:   row.UnitPrice.Decimal,
			Quantity:    row.Quantity,
			MaxQuantity: row.MaxQuantity,
		})
	}
	return cart.New(items...), nil
}
