package metrics

import (
	"math"
	"strconv"
	"strings"
)

// cacheKey derives the memoization key for the shared chain prefix
// (Transform1, Transform2, Rotation). The base key is the joined stage-name
// string. When Transform2 is an oscillator-style stage the cached series
// genuinely differs per period and percentile, so the key is extended with
// both; otherwise the prefix is stored flat under the joined names only and
// period/percentile are deliberately ignored. A stage that becomes period
// sensitive without being registered as an oscillator would silently share
// results across periods, which is why this rule lives in one function.
func cacheKey(chain []string, period, percentile float64, oscillator bool) string {
	key := strings.Join(chain, "-")
	if !oscillator {
		return key
	}
	return key + "/" + floatKey(period) + "/" + floatKey(percentile)
}

// floatKey renders a parameter for use in a cache key; absent parameters
// (NaN) share the "none" slot.
func floatKey(v float64) string {
	if math.IsNaN(v) {
		return "none"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
