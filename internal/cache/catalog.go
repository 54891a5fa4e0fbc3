package cache

import (
	"context"
	"fmt"
)

// ProductKey 商品详情缓存 key
func ProductKey(slug string) string {
	return fmt.Sprintf("catalog:product:%s", slug)
}

// InvalidateProducts 库存变化后清理商品详情缓存
func InvalidateProducts(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		keys = append(keys, ProductKey(slug))
	}
	return Del(ctx, keys...)
}
