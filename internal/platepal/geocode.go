package platepal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pageza/platepal/backend/internal/models"
)

// DefaultReverseGeocodeURL is the bigdatacloud client-side lookup.
const DefaultReverseGeocodeURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

// ReverseGeocoder resolves coordinates to a postcode.
type ReverseGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewReverseGeocoder uses DefaultReverseGeocodeURL when baseURL is empty.
func NewReverseGeocoder(baseURL string, client *http.Client) *ReverseGeocoder {
	if baseURL == "" {
		baseURL = DefaultReverseGeocodeURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ReverseGeocoder{baseURL: baseURL, client: client}
}

// Postcode returns the postcode for c. An empty string means the lookup
// succeeded but carried no postcode.
func (g *ReverseGeocoder) Postcode(ctx context.Context, c models.Coordinates) (string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid geocoder URL: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	q.Set("localityLanguage", "en")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("reverse geocode failed: status %d", resp.StatusCode)
	}

	var data struct {
		Postcode string `json:"postcode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	return data.Postcode, nil
}
