package redis

import (
	"fmt"
	"strconv"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
)

// Cache keys are namespaced by purpose. All numeric parts are formatted from
// plain integers; wrapper types never reach a key.
//
//	rec:{user}:{k}:{category|all}   recommendation results
//	sim:{product}:{k}               similarity lookups
//	trending:{window}[:{category}]  trending lists

func RecommendationKey(userExternalID string, k int, categoryID uint64) string {
	category := "all"
	if categoryID != 0 {
		category = strconv.FormatUint(categoryID, 10)
	}
	return fmt.Sprintf("rec:%s:%d:%s", userExternalID, k, category)
}

func UserRecommendationPattern(userExternalID string) string {
	return fmt.Sprintf("rec:%s:*", userExternalID)
}

func SimilarProductsKey(productID uint64, k int) string {
	return fmt.Sprintf("sim:%s:%d", strconv.FormatUint(productID, 10), k)
}

func TrendingKey(window domain.TimeWindow, categoryID uint64) string {
	if categoryID != 0 {
		return fmt.Sprintf("trending:%s:%s", window, strconv.FormatUint(categoryID, 10))
	}
	return fmt.Sprintf("trending:%s", window)
}

const (
	RecommendationPattern = "rec:*"
	SimilarPattern        = "sim:*"
	TrendingPattern       = "trending:*"
)
