package platepal

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/platepal/backend/internal/logger"
	"github.com/pageza/platepal/backend/internal/models"
)

var (
	ErrMissingPreferences = errors.New("Please enter your dietary preferences")
	ErrMissingLocation    = errors.New("Please get your location or enter a zipcode")
)

// Generator turns a prompt into free text. ProxyClient implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PostcodeLookup resolves coordinates to a postcode. ReverseGeocoder
// implements it.
type PostcodeLookup interface {
	Postcode(ctx context.Context, c models.Coordinates) (string, error)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLocator sets the position source. Without one, Locate reports
// ErrGeolocationUnsupported.
func WithLocator(l Locator) SessionOption {
	return func(s *Session) { s.locator = l }
}

// WithGeocoder sets the postcode lookup run after a successful Locate.
func WithGeocoder(g PostcodeLookup) SessionOption {
	return func(s *Session) { s.geocoder = g }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger.OrNop(l) }
}

// WithCustomizations switches the session to the extended preference set.
func WithCustomizations() SessionOption {
	return func(s *Session) { s.extended = true }
}

// Session holds the search form, the last results and the error banner.
type Session struct {
	generator Generator
	locator   Locator
	geocoder  PostcodeLookup
	logger    *zap.Logger
	extended  bool

	mu          sync.Mutex
	dietPrefs   string
	zipcode     string
	location    *models.Coordinates
	custom      Customizations
	sortMode    SortMode
	restaurants []models.Restaurant
	loading     int
	locating    bool
	errMsg      string
}

// NewSession creates an empty session that searches through gen.
func NewSession(gen Generator, opts ...SessionOption) *Session {
	s := &Session{
		generator: gen,
		logger:    zap.NewNop(),
		sortMode:  SortRelevance,
		custom: Customizations{
			Macros:     map[Macro]MacroIntensity{},
			FoodGroups: map[FoodGroup]Priority{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extended reports whether the session uses customizations.
func (s *Session) Extended() bool {
	return s.extended
}

func (s *Session) SetDietPrefs(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dietPrefs = v
	s.custom.Diet = v
}

func (s *Session) DietPrefs() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dietPrefs
}

// TogglePreference flips a quick preference and returns the new string.
func (s *Session) TogglePreference(label string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dietPrefs = Toggle(s.dietPrefs, label)
	s.custom.Diet = s.dietPrefs
	return s.dietPrefs
}

// Suggestions lists quick preferences matching the current input.
func (s *Session) Suggestions() []string {
	return Suggestions(s.DietPrefs(), MaxSuggestions)
}

func (s *Session) SetZipcode(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zipcode = v
}

func (s *Session) Zipcode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zipcode
}

// SetLocation stores coordinates directly; nil clears them.
func (s *Session) SetLocation(c *models.Coordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.location = nil
		return
	}
	loc := *c
	s.location = &loc
}

func (s *Session) Location() *models.Coordinates {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.location == nil {
		return nil
	}
	loc := *s.location
	return &loc
}

func (s *Session) SetCalories(r CalorieRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom.Calories = r
	return nil
}

func (s *Session) SetMacro(m Macro, v MacroIntensity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == IntensityUnset {
		delete(s.custom.Macros, m)
		return
	}
	s.custom.Macros[m] = v
}

func (s *Session) SetFoodGroup(g FoodGroup, p Priority) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == PriorityUnset {
		delete(s.custom.FoodGroups, g)
		return
	}
	s.custom.FoodGroups[g] = p
}

// Customizations returns a copy of the extended preference set.
func (s *Session) Customizations() Customizations {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom.clone()
}

func (s *Session) SetSortMode(m SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortMode = m
}

func (s *Session) SortMode() SortMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortMode
}

// Results returns the last successful results in the current sort order.
func (s *Session) Results() []models.Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SortRestaurants(s.restaurants, s.sortMode)
}

// Loading reports whether a search is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Locating reports whether a Locate call is in flight.
func (s *Session) Locating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locating
}

// Error returns the current error banner, or "".
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Locate asks the locator for the current position and stores it. A
// postcode lookup follows; its failure is logged and leaves the zipcode
// untouched.
func (s *Session) Locate(ctx context.Context) error {
	if s.locator == nil {
		s.logger.Error("geolocation unavailable", zap.Error(ErrGeolocationUnsupported))
		return ErrGeolocationUnsupported
	}

	s.mu.Lock()
	s.locating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.locating = false
		s.mu.Unlock()
	}()

	opts := DefaultPositionOptions
	posCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	pos, err := s.locator.CurrentPosition(posCtx, opts)
	cancel()
	if err != nil {
		s.logger.Error("failed to get location", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.location = &pos
	s.mu.Unlock()

	if s.geocoder == nil {
		return nil
	}

	postcode, err := s.geocoder.Postcode(ctx, pos)
	if err != nil {
		s.logger.Warn("failed to get zipcode", zap.Error(err))
		return nil
	}
	if postcode != "" {
		s.mu.Lock()
		s.zipcode = postcode
		s.mu.Unlock()
	}
	return nil
}

// Search validates the form, asks the generator for recommendations and
// stores the parsed results. On failure the previous results stay and the
// error banner is set.
func (s *Session) Search(ctx context.Context) error {
	s.mu.Lock()
	prompt, err := s.promptLocked()
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.logger.Info("search rejected", zap.Error(err))
		return err
	}
	s.loading++
	s.errMsg = ""
	s.mu.Unlock()

	s.logger.Debug("searching", zap.String("prompt", logger.Truncate(prompt, 100)))

	restaurants, err := s.fetch(ctx, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if err != nil {
		s.errMsg = displayMessage(err)
		s.logger.Error("search failed", zap.Error(err))
		return err
	}
	s.restaurants = restaurants
	s.logger.Info("search complete", zap.Int("results", len(restaurants)))
	return nil
}

// Refresh re-runs the search when both coordinates and preferences are
// present. It reports whether a search was attempted.
func (s *Session) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	ready := s.location != nil && s.hasPreferencesLocked()
	s.mu.Unlock()
	if !ready {
		return false, nil
	}
	return true, s.Search(ctx)
}

func (s *Session) fetch(ctx context.Context, prompt string) ([]models.Restaurant, error) {
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseRestaurants(text)
}

// promptLocked validates the form and builds the prompt from a snapshot of
// it. Callers hold s.mu.
func (s *Session) promptLocked() (string, error) {
	if !s.hasPreferencesLocked() {
		return "", ErrMissingPreferences
	}
	loc := Location{Zipcode: s.zipcode}
	if s.location != nil {
		c := *s.location
		loc.Coordinates = &c
	}
	if !loc.IsSet() {
		return "", ErrMissingLocation
	}
	if s.extended {
		return BuildCustomizedPrompt(loc, s.custom.clone()), nil
	}
	return BuildPrompt(loc, s.dietPrefs), nil
}

func (s *Session) hasPreferencesLocked() bool {
	if s.extended {
		return s.custom.HasSignal()
	}
	return strings.TrimSpace(s.dietPrefs) != ""
}

func displayMessage(err error) string {
	if errors.Is(err, ErrParse) {
		return ErrParse.Error()
	}
	return err.Error()
}
