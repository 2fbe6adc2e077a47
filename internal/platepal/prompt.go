package platepal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pageza/platepal/backend/internal/models"
)

// formatInstructions is appended to every prompt so the model answers with a
// bare JSON array.
const formatInstructions = `Please return ONLY a JSON array of restaurants in this exact format:
[
  {
    "name": "Restaurant Name",
    "address": "Street address",
    "description": "Brief description of why it matches the dietary preferences",
    "rating": "4.5/5 or similar"
  }
]

Limit to 8 restaurants maximum. Make sure the JSON is valid and contains no other text.`

// Location is where to search: device coordinates win over a zipcode.
type Location struct {
	Coordinates *models.Coordinates
	Zipcode     string
}

// IsSet reports whether coordinates or a non-blank zipcode are present.
func (l Location) IsSet() bool {
	return l.Coordinates != nil || strings.TrimSpace(l.Zipcode) != ""
}

// Describe renders the location for a prompt.
func (l Location) Describe() string {
	if l.Coordinates != nil {
		return fmt.Sprintf("latitude %s, longitude %s",
			formatCoordinate(l.Coordinates.Latitude),
			formatCoordinate(l.Coordinates.Longitude))
	}
	return "zipcode " + strings.TrimSpace(l.Zipcode)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildPrompt assembles the basic prompt from a free-form preference string.
func BuildPrompt(loc Location, dietPrefs string) string {
	return fmt.Sprintf("Find me restaurants near %s that match these dietary preferences: %s.\n\n%s",
		loc.Describe(), strings.TrimSpace(dietPrefs), formatInstructions)
}

// BuildCustomizedPrompt assembles the extended prompt, one line per set
// customization.
func BuildCustomizedPrompt(loc Location, c Customizations) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find me restaurants near %s that match these customizations:\n", loc.Describe())
	for _, line := range c.Lines() {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(formatInstructions)
	return b.String()
}
