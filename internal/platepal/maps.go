package platepal

import (
	"net/url"
	"strings"

	"github.com/pageza/platepal/backend/internal/models"
)

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// MapsURL links to a map search for the restaurant's name and address.
func MapsURL(r models.Restaurant) string {
	query := strings.TrimSpace(r.Name + " " + r.Address)
	return mapsSearchURL + strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}
