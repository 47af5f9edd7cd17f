// Package cli implements tripctl: schema migrations, trip listing, flight
// search and the interactive flight-booking wizard.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/events"
	"github.com/pkordes/trip-planner/internal/flightlookup"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
)

var (
	// Global flags
	userID   string
	userName string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:     "tripctl",
	Version: "dev",
	Short:   "Trip planner command-line tool",
	Long: `tripctl manages the trip planner database and lets a traveler list trips,
search flights and book them onto a trip from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("TRIPCTL_USER"), "traveler user ID (defaults to $TRIPCTL_USER)")
	rootCmd.PersistentFlags().StringVar(&userName, "name", "", "traveler display name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(migrateCmd, tripsCmd, flightsCmd, bookFlightCmd)
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func currentSession() (domain.Session, error) {
	if userID == "" {
		return domain.Session{}, fmt.Errorf("--user is required")
	}
	return domain.Session{UserID: userID, DisplayName: userName, Locale: "en"}, nil
}

// app holds what the data commands need. Close releases the pool.
type app struct {
	pool    *pgxpool.Pool
	trips   *service.TripService
	flights *service.FlightService
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// newApp wires the services the same way the API server does, without the
// cache and event publisher.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store := repo.NewTripStore(pool)
	locks := service.NewTripLocks()
	lookup := flightlookup.New(cfg.Flights.URL, cfg.Flights.APIKey)
	return &app{
		pool:    pool,
		trips:   service.NewTripService(store, events.Nop{}, locks),
		flights: service.NewFlightService(store, lookup, events.Nop{}, locks),
	}, nil
}
