package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Restaurant is one recommendation as returned by the generation API.
type Restaurant struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Rating      Rating `json:"rating,omitempty"`
}

// UnmarshalJSON reads whatever fields are usable. Off-type values become
// text where they have a scalar form and "" otherwise, and a non-object
// entry decodes to the zero Restaurant.
func (r *Restaurant) UnmarshalJSON(data []byte) error {
	*r = Restaurant{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	r.Name = looseString(fields["name"])
	r.Address = looseString(fields["address"])
	r.Description = looseString(fields["description"])
	r.Rating = Rating(looseString(fields["rating"]))
	return nil
}

// Rating is the free-form rating text, e.g. "4.5/5". Models sometimes emit a
// bare number instead of a string, so scalars of any type are accepted. The
// zero value means no rating was given.
type Rating string

func (r *Rating) UnmarshalJSON(data []byte) error {
	*r = Rating(looseString(data))
	return nil
}

// looseString renders a JSON scalar as text. Null, objects and arrays give "".
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case 't', 'f':
		return string(raw)
	case 'n', '{', '[':
		return ""
	default:
		var num float64
		if err := json.Unmarshal(raw, &num); err == nil {
			return strconv.FormatFloat(num, 'f', -1, 64)
		}
	}
	return ""
}

// Coordinates is a position reported by a geolocation source.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
