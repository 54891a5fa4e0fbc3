package service

import (
	"context"
	"strings"
	"time"

	"github.com/threadhouse/internal/cache"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/repository"
	"github.com/threadhouse/internal/variant"
)

// CatalogService 商品目录读取与规格选择服务
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cacheTTL     time.Duration
	resetPolicy  variant.ResetPolicy
}

// NewCatalogService 创建目录服务
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, cacheTTL time.Duration, resetPolicy variant.ResetPolicy) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheTTL:     cacheTTL,
		resetPolicy:  resetPolicy,
	}
}

// ParseResetPolicy 解析配置中的级联重置策略，未知值按 first_available 处理
func ParseResetPolicy(raw string) variant.ResetPolicy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unset":
		return variant.ResetUnset
	default:
		return variant.ResetFirstAvailable
	}
}

// ProductListInput 公开商品列表查询
type ProductListInput struct {
	Page         int
	PageSize     int
	CategorySlug string
	Search       string
	InStock      *bool
}

// ListProducts 公开商品列表
func (s *CatalogService) ListProducts(input ProductListInput) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Search:   input.Search,
		InStock:  input.InStock,
	}
	if slug := strings.TrimSpace(input.CategorySlug); slug != "" {
		category, err := s.categoryRepo.GetBySlug(slug)
		if err != nil {
			return nil, 0, err
		}
		if category == nil {
			return []models.Product{}, 0, nil
		}
		filter.CategoryID = category.ID
	}
	return s.productRepo.List(filter)
}

// ListCategories 分类列表
func (s *CatalogService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.List()
}

// GetProduct 商品详情，优先读取缓存
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProductNotFound
	}
	key := cache.ProductKey(slug)
	var cached models.Product
	hit, err := cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("catalog_cache_get_failed", "slug", slug, "error", err)
	}
	if hit {
		return &cached, nil
	}

	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if s.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, key, product, s.cacheTTL); err != nil {
			logger.Warnw("catalog_cache_set_failed", "slug", slug, "error", err)
		}
	}
	return product, nil
}

// VariantOptionsInput 规格选择请求；Changed 为本次变更的维度，为空时整体重新校验
type VariantOptionsInput struct {
	Slug      string
	Selection variant.Selection
	Changed   variant.Dimension
}

// VariantOptions 应用一次规格选择并返回各维度可选项与解析结果
func (s *CatalogService) VariantOptions(ctx context.Context, input VariantOptionsInput) (*variant.View, error) {
	product, err := s.GetProduct(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	reducer := variant.NewReducer(toVariants(product.Variants), s.resetPolicy)

	var result variant.Result
	if input.Changed != "" {
		value := input.Selection.Get(input.Changed)
		base := input.Selection.Clone()
		delete(base, input.Changed)
		if value == "" {
			result = reducer.Reduce(base, variant.Clear{Dim: input.Changed})
		} else {
			result = reducer.Reduce(base, variant.Select{Dim: input.Changed, Value: value})
		}
	} else {
		result = reducer.Revalidate(input.Selection)
	}

	view := reducer.Snapshot(result.Selection)
	view.Resets = result.Resets
	view.Rejected = result.Rejected
	return &view, nil
}

// toVariants 转换为规格解析使用的值类型
func toVariants(rows []models.ProductVariant) []variant.Variant {
	out := make([]variant.Variant, 0, len(rows))
	for _, row := range rows {
		out = append(out, toVariant(row))
	}
	return out
}

func toVariant(row models.ProductVariant) variant.Variant {
	return variant.Variant{
		ID:         row.ID,
		Size:       row.Size,
		Color:      row.Color,
		SleeveType: row.SleeveType,
		Fit:        row.Fit,
		Stock:      row.Stock,
		SKU:        row.SKU,
	}
}
