package platepal

import (
	"context"
	"errors"
	"time"

	"github.com/pageza/platepal/backend/internal/models"
)

// ErrGeolocationUnsupported means no position source is available.
var ErrGeolocationUnsupported = errors.New("geolocation is not supported")

// PositionOptions mirrors the knobs a position source accepts.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// DefaultPositionOptions asks for a precise fix within 15 seconds.
var DefaultPositionOptions = PositionOptions{HighAccuracy: true, Timeout: 15 * time.Second}

// Locator supplies the device position.
type Locator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (models.Coordinates, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context, opts PositionOptions) (models.Coordinates, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context, opts PositionOptions) (models.Coordinates, error) {
	return f(ctx, opts)
}

// StaticLocator always reports the same position.
type StaticLocator models.Coordinates

func (s StaticLocator) CurrentPosition(ctx context.Context, _ PositionOptions) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	return models.Coordinates(s), nil
}
