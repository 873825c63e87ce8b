package redis

import (
	"regexp"
	"testing"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
)

func TestRecommendationKey(t *testing.T) {
	if got := RecommendationKey("u42", 10, 3); got != "rec:u42:10:3" {
		t.Errorf("key = %q, want rec:u42:10:3", got)
	}
	if got := RecommendationKey("u42", 10, 0); got != "rec:u42:10:all" {
		t.Errorf("key = %q, want rec:u42:10:all", got)
	}
}

func TestSimilarProductsKey(t *testing.T) {
	if got := SimilarProductsKey(17, 5); got != "sim:17:5" {
		t.Errorf("key = %q, want sim:17:5", got)
	}
}

func TestTrendingKey(t *testing.T) {
	if got := TrendingKey(domain.Window7d, 0); got != "trending:7d" {
		t.Errorf("key = %q, want trending:7d", got)
	}
	if got := TrendingKey(domain.Window30d, 9); got != "trending:30d:9" {
		t.Errorf("key = %q, want trending:30d:9", got)
	}
}

func TestUserRecommendationPattern(t *testing.T) {
	if got := UserRecommendationPattern("u42"); got != "rec:u42:*" {
		t.Errorf("pattern = %q, want rec:u42:*", got)
	}
}

// Numeric key segments must render as plain decimal integers across the whole
// id range, never as a formatted or wrapped representation.
func TestKeys_NumericSegmentsArePlainIntegers(t *testing.T) {
	plain := regexp.MustCompile(`^[a-z]+:(7d|30d|[^:]+)(:[0-9]+)*(:(all|[0-9]+))?$`)

	ids := []uint64{1, 42, 1 << 31, 1<<63 + 11}
	for _, id := range ids {
		for _, key := range []string{
			SimilarProductsKey(id, 10),
			TrendingKey(domain.Window7d, id),
			RecommendationKey("u", 10, id),
		} {
			if !plain.MatchString(key) {
				t.Errorf("key %q has a non-plain segment", key)
			}
		}
	}
}
