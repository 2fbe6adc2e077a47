package platepal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pageza/platepal/backend/internal/models"
)

// SortMode orders a result list. Distance and price modes are approximations:
// results carry no distance or price data, so they fall back to name order.
// Diet match ranks longer descriptions first, measured in UTF-16 code units.
type SortMode string

const (
	SortRelevance    SortMode = "relevance"
	SortRating       SortMode = "rating"
	SortDietMatch    SortMode = "diet-match"
	SortDistance     SortMode = "distance"
	SortPriceLowHigh SortMode = "price-low-high"
	SortPriceHighLow SortMode = "price-high-low"
)

// SortModes lists every supported mode.
var SortModes = []SortMode{
	SortRelevance,
	SortRating,
	SortDietMatch,
	SortDistance,
	SortPriceLowHigh,
	SortPriceHighLow,
}

// ParseSortMode accepts a mode name; empty means relevance.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortRelevance, nil
	}
	for _, m := range SortModes {
		if SortMode(s) == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

var leadingNumber = regexp.MustCompile(`^\s*[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`)

// RatingValue reads the leading number of a rating such as "4.5/5". Anything
// without one counts as 0.
func RatingValue(r models.Rating) float64 {
	m := leadingNumber.FindString(string(r))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0
	}
	return v
}

// SortRestaurants returns a sorted copy of restaurants. The sort is stable
// and the input is never modified.
func SortRestaurants(restaurants []models.Restaurant, mode SortMode) []models.Restaurant {
	out := make([]models.Restaurant, len(restaurants))
	copy(out, restaurants)

	switch mode {
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return RatingValue(out[i].Rating) > RatingValue(out[j].Rating)
		})
	case SortDietMatch:
		sort.SliceStable(out, func(i, j int) bool {
			return utf16Len(out[i].Description) > utf16Len(out[j].Description)
		})
	case SortDistance, SortPriceLowHigh:
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortPriceHighLow:
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) > 0
		})
	}
	return out
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
