package platepal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/platepal/backend/internal/models"
)

func TestMapsURL(t *testing.T) {
	assert.Equal(t,
		"https://www.google.com/maps/search/?api=1&query=Green%20Bowl%2012%20Main%20St%2C%20NY",
		MapsURL(models.Restaurant{Name: "Green Bowl", Address: "12 Main St, NY"}))

	assert.Equal(t,
		"https://www.google.com/maps/search/?api=1&query=Fish%20%26%20Chips",
		MapsURL(models.Restaurant{Name: "Fish & Chips"}))
}
