package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/locus/internal/common"
	"github.com/ternarybob/locus/internal/interfaces"
	"github.com/ternarybob/locus/internal/places"
	"github.com/ternarybob/locus/internal/storage/badger"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	apiKey       = flag.String("key", "", "API key (overrides config)")
	noCache      = flag.Bool("no-cache", false, "Disable response caching")
	serveAddr    = flag.String("addr", ":8080", "Listen address for serve mode")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: locus [flags] <command> [args]

Commands:
  geocode <address>              Geocode a street address
  reverse <lat> <lng>            Reverse geocode coordinates
  details <place_id> [field...]  Fetch place details
  find <query>                   Find places from a text query
  nearby <lat> <lng> [radius]    Search places around a point
  search <query>                 Free-form text search
  autocomplete <input>           Place predictions for a partial input
  photo <photo_reference>        Print the photo URL for a reference
  cache-clear [identifier]       Clear one cache entry, or all of them
  serve                          Run the HTTP lookup server

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Locus version %s\n", common.GetVersion())
		os.Exit(0)
	}

	path := *configFile
	if path == "" {
		path = *configFileC
	}
	if path == "" {
		if _, err := os.Stat("locus.toml"); err == nil {
			path = "locus.toml"
		}
	}

	config, err := common.LoadFromFile(path)
	if err != nil {
		common.GetLogger().Fatal().Err(err).Str("path", path).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if *apiKey != "" {
		config.PlacesAPI.APIKey = *apiKey
	}
	if *noCache {
		config.Cache.Enabled = false
	}

	if err := config.Validate(); err != nil {
		common.GetLogger().Fatal().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	command := args[0]

	var cache interfaces.CacheStorage
	var db *badger.BadgerDB
	if config.Cache.Enabled || command == "cache-clear" {
		db, err = badger.NewBadgerDB(logger, &config.Storage.Badger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open cache storage")
			os.Exit(1)
		}
		defer db.Close()
		cache = badger.NewCacheStorage(db, logger)
	}

	opts := []places.ClientOption{
		places.WithLogger(logger),
		places.WithCacheExpiration(time.Duration(config.Cache.ExpirationSeconds) * time.Second),
		places.WithRateLimit(config.PlacesAPI.RateLimit),
		places.WithLanguage(config.PlacesAPI.Language),
		places.WithRegion(config.PlacesAPI.Region),
		places.WithHTTPClient(&http.Client{Timeout: config.PlacesAPI.RequestTimeout}),
	}
	if cache != nil {
		opts = append(opts, places.WithCache(cache))
	}
	if !config.Cache.Enabled {
		opts = append(opts, places.WithCacheDisabled())
	}

	client, err := places.NewClient(config.PlacesAPI.APIKey, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Places client")
		os.Exit(1)
	}

	ctx := context.Background()

	if command == "serve" {
		common.PrintBanner(common.GetVersion())
		runServer(ctx, client, cache, logger)
		return
	}

	if err := runCommand(ctx, client, command, args[1:]); err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, client *places.Client, command string, args []string) error {
	switch command {
	case "geocode":
		if len(args) < 1 {
			return errors.New("geocode requires an address")
		}
		resp, err := client.Geocode(ctx, args[0], nil)
		if err != nil {
			return err
		}
		printResponse(resp)

	case "reverse":
		lat, lng, err := parseLatLng(args)
		if err != nil {
			return err
		}
		resp, err := client.ReverseGeocode(ctx, lat, lng)
		if err != nil {
			return err
		}
		printResponse(resp)

	case "details":
		if len(args) < 1 {
			return errors.New("details requires a place ID")
		}
		resp, err := client.PlaceDetails(ctx, args[0], args[1:]...)
		if err != nil {
			return err
		}
		printResponse(resp)

	case "find":
		if len(args) < 1 {
			return errors.New("find requires a query")
		}
		resp, err := client.FindPlaces(ctx, args[0])
		if err != nil {
			return err
		}
		printResponse(resp)

	case "nearby":
		lat, lng, err := parseLatLng(args)
		if err != nil {
			return err
		}
		radius := 1000
		if len(args) > 2 {
			if radius, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("invalid radius %q: %w", args[2], err)
			}
		}
		resp, err := client.NearbySearch(ctx, lat, lng, radius)
		if err != nil {
			return err
		}
		printResponse(resp)

	case "search":
		if len(args) < 1 {
			return errors.New("search requires a query")
		}
		resp, err := client.TextSearch(ctx, args[0])
		if err != nil {
			return err
		}
		printResponse(resp)

	case "autocomplete":
		if len(args) < 1 {
			return errors.New("autocomplete requires an input term")
		}
		resp, err := client.Autocomplete(ctx, args[0])
		if err != nil {
			return err
		}
		for _, prediction := range resp.Predictions() {
			if desc, ok := prediction["description"].(string); ok {
				fmt.Println(desc)
			}
		}

	case "photo":
		if len(args) < 1 {
			return errors.New("photo requires a photo reference")
		}
		fmt.Println(client.PhotoURL(args[0]))

	case "cache-clear":
		return client.ClearCache(ctx, args...)

	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

func parseLatLng(args []string) (float64, float64, error) {
	if len(args) < 2 {
		return 0, 0, errors.New("latitude and longitude are required")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", args[0], err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", args[1], err)
	}
	return lat, lng, nil
}

func printResponse(resp *places.Response) {
	fmt.Printf("status: %s\n", resp.Status())
	results := resp.Results()
	fmt.Printf("results: %d\n", len(results))
	if len(results) == 0 {
		return
	}

	if name := resp.Name(); name != "" {
		fmt.Printf("name: %s\n", name)
	}
	if address := resp.FormattedAddress(); address != "" {
		fmt.Printf("address: %s\n", address)
	}
	if placeID := resp.PlaceID(); placeID != "" {
		fmt.Printf("place_id: %s\n", placeID)
	}
	if lat, lng, ok := resp.Location(); ok {
		fmt.Printf("location: %f,%f\n", lat, lng)
	}
	if rating, ok := resp.Rating(); ok {
		fmt.Printf("rating: %.1f\n", rating)
	}
	if phone := resp.FormattedPhoneNumber(); phone != "" {
		fmt.Printf("phone: %s\n", phone)
	}
	fmt.Printf("price: %s\n", resp.FormattedPriceLevel())
	fmt.Printf("business status: %s\n", resp.FormattedBusinessStatus())

	if hours := resp.FormattedOpeningHours(); len(hours) > 0 {
		fmt.Println("hours:")
		for _, day := range []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"} {
			if entry, ok := hours[day]; ok {
				fmt.Printf("  %s: %s - %s\n", day, entry.Open, entry.Close)
			}
		}
	}
	if amenities := resp.Amenities(); len(amenities) > 0 {
		fmt.Println("amenities:")
		for _, label := range amenities {
			fmt.Printf("  %s\n", label)
		}
	}
}

// runServer exposes the client operations as a small JSON lookup API and
// purges expired cache entries on a schedule.
func runServer(ctx context.Context, client *places.Client, cache interfaces.CacheStorage, logger arbor.ILogger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		writeLookup(w, r, logger, func() (*places.Response, error) {
			return client.Geocode(r.Context(), r.URL.Query().Get("address"), nil)
		})
	})
	mux.HandleFunc("/details", func(w http.ResponseWriter, r *http.Request) {
		writeLookup(w, r, logger, func() (*places.Response, error) {
			return client.PlaceDetails(r.Context(), r.URL.Query().Get("place_id"))
		})
	})
	mux.HandleFunc("/nearby", func(w http.ResponseWriter, r *http.Request) {
		writeLookup(w, r, logger, func() (*places.Response, error) {
			q := r.URL.Query()
			lat, err := strconv.ParseFloat(q.Get("lat"), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid lat: %w", err)
			}
			lng, err := strconv.ParseFloat(q.Get("lng"), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid lng: %w", err)
			}
			radius, _ := strconv.Atoi(q.Get("radius"))
			return client.NearbySearch(r.Context(), lat, lng, radius)
		})
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		writeLookup(w, r, logger, func() (*places.Response, error) {
			return client.TextSearch(r.Context(), r.URL.Query().Get("q"))
		})
	})
	mux.HandleFunc("/autocomplete", func(w http.ResponseWriter, r *http.Request) {
		writeLookup(w, r, logger, func() (*places.Response, error) {
			return client.Autocomplete(r.Context(), r.URL.Query().Get("input"))
		})
	})

	scheduler := cron.New()
	if cache != nil {
		if _, err := scheduler.AddFunc("@hourly", func() {
			if _, err := cache.PurgeExpired(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("Scheduled cache purge failed")
			}
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to schedule cache purge")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{Addr: *serveAddr, Handler: mux}

	go func() {
		logger.Info().Str("addr", *serveAddr).Msg("Lookup server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Lookup server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Lookup server stopped")
}

func writeLookup(w http.ResponseWriter, r *http.Request, logger arbor.ILogger, fn func() (*places.Response, error)) {
	w.Header().Set("Content-Type", "application/json")

	resp, err := fn()
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *places.APIError
		if errors.As(err, &apiErr) {
			status = http.StatusUnprocessableEntity
		}
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Lookup failed")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(resp.Raw())
}
