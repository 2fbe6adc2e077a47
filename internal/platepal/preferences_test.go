package platepal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	assert.Nil(t, Tokens(""))
	assert.Nil(t, Tokens(" , ,"))
	assert.Equal(t, []string{"vegan", "Gluten-free", "halal"}, Tokens(" vegan,Gluten-free , ,halal"))
}

func TestIsActive(t *testing.T) {
	assert.True(t, IsActive("vegan, KETO", "Keto"))
	assert.False(t, IsActive("vegan, keto-ish", "Keto"))
	assert.False(t, IsActive("", "Vegan"))
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name  string
		prefs string
		label string
		want  string
	}{
		{"adds to empty", "", "Vegan", "vegan"},
		{"appends lowercased", "halal", "Gluten-free", "halal, gluten-free"},
		{"removes case-insensitively", "halal, Vegan ,keto", "vegan", "halal, keto"},
		{"removes duplicates", "vegan, VEGAN", "Vegan", ""},
		{"normalizes spacing", "halal,,keto", "Paleo", "halal, keto, paleo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Toggle(tt.prefs, tt.label))
		})
	}
}

func TestToggle_TwiceRestoresTokens(t *testing.T) {
	for _, prefs := range []string{"", "halal, keto", " kosher ,raw"} {
		for _, label := range QuickPreferences {
			if IsActive(prefs, label) {
				continue
			}
			once := Toggle(prefs, label)
			twice := Toggle(once, label)
			assert.Equal(t, Tokens(prefs), Tokens(twice), "prefs %q label %q", prefs, label)
		}
	}
}

func TestSuggestions(t *testing.T) {
	assert.Equal(t, []string{"Vegan", "Vegetarian"}, Suggestions("veg", MaxSuggestions))
	assert.Equal(t, []string{"Gluten-free", "Dairy-free", "Nut-free"}, Suggestions("FREE", MaxSuggestions))
	assert.Empty(t, Suggestions("vegan", MaxSuggestions))
	assert.Empty(t, Suggestions("pizza", MaxSuggestions))
	assert.Empty(t, Suggestions("veg ", MaxSuggestions))
	assert.Equal(t, []string{"Gluten-free"}, Suggestions("Gluten-", MaxSuggestions))
	assert.Equal(t, QuickPreferences[:MaxSuggestions], Suggestions("", MaxSuggestions))

	all := Suggestions("a", MaxSuggestions)
	assert.Len(t, all, MaxSuggestions)
	assert.Equal(t, []string{"Vegan", "Vegetarian", "Halal", "Paleo", "Dairy-free", "Low-carb"}, all)
}
