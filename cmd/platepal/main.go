package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/pageza/platepal/backend/internal/logger"
	"github.com/pageza/platepal/backend/internal/models"
	"github.com/pageza/platepal/backend/internal/platepal"
)

type options struct {
	server      string
	geocoderURL string
	prefs       string
	toggles     []string
	suggest     bool
	zipcode     string
	lat, lon    float64
	hasPosition bool
	extended    bool
	caloriesMin int
	caloriesMax int
	macros      map[string]string
	foodGroups  map[string]string
	sortMode    string
	timeout     time.Duration
	logLevel    string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("platepal", pflag.ContinueOnError)

	server := os.Getenv("PLATEPAL_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}

	fs.StringVar(&opts.server, "server", server, "PlatePal API base URL (env PLATEPAL_SERVER)")
	fs.StringVar(&opts.geocoderURL, "geocoder-url", platepal.DefaultReverseGeocodeURL, "reverse geocoding endpoint")
	fs.StringVarP(&opts.prefs, "prefs", "p", "", "comma-separated dietary preferences")
	fs.StringSliceVarP(&opts.toggles, "toggle", "t", nil, "toggle a quick preference (repeatable)")
	fs.BoolVar(&opts.suggest, "suggest", false, "print quick preference suggestions for --prefs and exit")
	fs.StringVarP(&opts.zipcode, "zip", "z", "", "zipcode to search near")
	fs.Float64Var(&opts.lat, "lat", 0, "latitude of the current position")
	fs.Float64Var(&opts.lon, "lon", 0, "longitude of the current position")
	fs.BoolVarP(&opts.extended, "extended", "x", false, "use structured customizations instead of a flat preference string")
	fs.IntVar(&opts.caloriesMin, "calories-min", 0, "minimum calories per meal")
	fs.IntVar(&opts.caloriesMax, "calories-max", 0, "maximum calories per meal")
	fs.StringToStringVar(&opts.macros, "macro", nil, "macro intensity, e.g. protein=maximize,carbs=minimize")
	fs.StringToStringVar(&opts.foodGroups, "food-group", nil, "food group priority, e.g. vegetables=prioritize,meat=avoid")
	fs.StringVarP(&opts.sortMode, "sort", "s", string(platepal.SortRelevance), "sort mode: "+sortModeNames())
	fs.DurationVar(&opts.timeout, "timeout", platepal.DefaultProxyTimeout, "request timeout")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.hasPosition = fs.Changed("lat") || fs.Changed("lon")
	if fs.Changed("calories-min") || fs.Changed("calories-max") || len(opts.macros) > 0 || len(opts.foodGroups) > 0 {
		opts.extended = true
	}
	return opts, nil
}

func sortModeNames() string {
	names := make([]string, len(platepal.SortModes))
	for i, m := range platepal.SortModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(opts.logLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, log *zap.Logger) error {
	httpClient := &http.Client{Timeout: opts.timeout}

	sessionOpts := []platepal.SessionOption{
		platepal.WithLogger(log),
		platepal.WithGeocoder(platepal.NewReverseGeocoder(opts.geocoderURL, httpClient)),
	}
	if opts.hasPosition {
		sessionOpts = append(sessionOpts, platepal.WithLocator(platepal.StaticLocator(models.Coordinates{
			Latitude:  opts.lat,
			Longitude: opts.lon,
		})))
	}
	if opts.extended {
		sessionOpts = append(sessionOpts, platepal.WithCustomizations())
	}

	session := platepal.NewSession(platepal.NewProxyClient(opts.server, httpClient), sessionOpts...)
	if err := applyForm(session, opts); err != nil {
		return err
	}

	if opts.suggest {
		for _, s := range session.Suggestions() {
			fmt.Println(s)
		}
		return nil
	}

	if opts.hasPosition {
		if err := session.Locate(ctx); err != nil {
			log.Warn("Using zipcode instead of position", zap.Error(err))
		}
	}

	if err := session.Search(ctx); err != nil {
		return errors.New(session.Error())
	}

	return renderCards(os.Stdout, session.Results())
}

func applyForm(session *platepal.Session, opts *options) error {
	session.SetDietPrefs(opts.prefs)
	for _, label := range opts.toggles {
		session.TogglePreference(label)
	}
	session.SetZipcode(opts.zipcode)

	mode, err := platepal.ParseSortMode(opts.sortMode)
	if err != nil {
		return err
	}
	session.SetSortMode(mode)

	if err := session.SetCalories(platepal.CalorieRange{Min: opts.caloriesMin, Max: opts.caloriesMax}); err != nil {
		return err
	}
	for name, value := range opts.macros {
		macro, err := platepal.ParseMacro(name)
		if err != nil {
			return err
		}
		intensity, err := platepal.ParseMacroIntensity(value)
		if err != nil {
			return err
		}
		session.SetMacro(macro, intensity)
	}
	for name, value := range opts.foodGroups {
		group, err := platepal.ParseFoodGroup(name)
		if err != nil {
			return err
		}
		priority, err := platepal.ParsePriority(value)
		if err != nil {
			return err
		}
		session.SetFoodGroup(group, priority)
	}
	return nil
}
