package platepal

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/pageza/platepal/backend/internal/models"
)

// ErrParse is returned when no restaurant array can be read from a model
// response. Its text is shown to the user as is.
var ErrParse = errors.New("Could not parse restaurant data from response")

// arrayPattern spans from the first '[' to the last ']'.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ParseRestaurants extracts the JSON array embedded in free text.
func ParseRestaurants(text string) ([]models.Restaurant, error) {
	match := arrayPattern.FindString(text)
	if match == "" {
		return nil, ErrParse
	}

	var restaurants []models.Restaurant
	if err := json.Unmarshal([]byte(match), &restaurants); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}
	return restaurants, nil
}
