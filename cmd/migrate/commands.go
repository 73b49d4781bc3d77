package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lunchvote/internal/config"
	"lunchvote/internal/container"
	"lunchvote/internal/domain"
	"lunchvote/internal/middleware"
	"lunchvote/internal/repository"
	"lunchvote/pkg/database"
	"lunchvote/pkg/logger"
)

// options are the flags shared by every subcommand
type options struct {
	driver      string
	databaseURL string
	sqlitePath  string
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	// Load .env file if it exists
	_ = godotenv.Load()

	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the lunchvote poll store schema and seed data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.driver, "driver", envOr("DATABASE_DRIVER", config.DriverPostgres),
		"poll store driver (postgres|sqlite)")
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", envOr("DATABASE_URL", ""),
		"Postgres connection URL")
	root.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", envOr("SQLITE_PATH", "lunchvote.db"),
		"SQLite database file")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Create the poll tables and indexes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, opts, func(ctx context.Context, s *store) error {
					if err := s.ensureSchema(ctx); err != nil {
						return err
					}
					cmd.Println("✅ All tables created successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop the poll tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, opts, func(ctx context.Context, s *store) error {
					if err := s.drop(ctx); err != nil {
						return err
					}
					cmd.Println("✅ All tables dropped successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create sample polls and votes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, opts, func(ctx context.Context, s *store) error {
					if err := s.ensureSchema(ctx); err != nil {
						return err
					}
					if err := seedData(ctx, s.pollStore); err != nil {
						return fmt.Errorf("failed to seed data: %w", err)
					}
					cmd.Println("✅ Data seeded successfully")
					return nil
				})
			},
		},
		newTokenCmd(),
	)

	return root
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token for poll teardown",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := middleware.SignAdminToken(envOr("ADMIN_JWT_SECRET", ""), subject, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			cmd.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

// store is an open poll store of either dialect
type store struct {
	postgres  *database.PostgresDB
	sqlite    *database.SQLiteDB
	pollStore repository.PollStore
}

func withStore(cmd *cobra.Command, opts *options, fn func(ctx context.Context, s *store) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	s := &store{}
	switch opts.driver {
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, opts.sqlitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		s.sqlite = db
		s.pollStore = repository.NewSQLitePollStore(db)

	case config.DriverPostgres:
		if opts.databaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		db, err := database.NewPostgresDB(ctx, opts.databaseURL, database.DefaultPoolOptions())
		if err != nil {
			return err
		}
		defer db.Close()
		s.postgres = db
		s.pollStore = repository.NewPostgresPollStore(db)

	default:
		return fmt.Errorf("unsupported driver %q", opts.driver)
	}

	return fn(ctx, s)
}

func (s *store) ensureSchema(ctx context.Context) error {
	if s.postgres != nil {
		return s.postgres.EnsureSchema(ctx)
	}
	return s.sqlite.EnsureSchema(ctx)
}

func (s *store) drop(ctx context.Context) error {
	for _, stmt := range database.DropSchema {
		var err error
		if s.postgres != nil {
			_, err = s.postgres.Pool.Exec(ctx, stmt)
		} else {
			_, err = s.sqlite.DB.ExecContext(ctx, stmt)
		}
		if err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}
	return nil
}

type seedPoll struct {
	groupID  string
	question string
	options  []string
	votes    map[string]int // option text -> number of seeded voters
}

var seedPolls = []seedPoll{
	{
		groupID:  "platform",
		question: "Where should we go for lunch today?",
		options:  []string{"Sushi Palace", "Burger Joint", "Thai Garden", "Pizza Heaven"},
		votes:    map[string]int{"Sushi Palace": 3, "Burger Joint": 1, "Thai Garden": 2},
	},
	{
		groupID:  "security",
		question: "Team lunch spot?",
		options:  []string{"Mexican Grill", "Indian Curry House"},
		votes:    map[string]int{"Indian Curry House": 2},
	},
}

// seedData creates the sample polls through the services, so the seeded
// rows obey the same rules as live traffic.
func seedData(ctx context.Context, pollStore repository.PollStore) error {
	cfg := &config.Config{StoreTimeout: 5 * time.Second}
	services := container.NewWithStore(cfg, logger.NewNop(), pollStore, nil).Services

	for _, sp := range seedPolls {
		if _, err := services.Polls.CreatePoll(ctx, domain.CreatePollRequest{
			GroupID:  sp.groupID,
			Question: sp.question,
			Options:  sp.options,
		}); err != nil {
			return fmt.Errorf("create poll for %s: %w", sp.groupID, err)
		}

		poll, err := services.Polls.GetActivePoll(ctx, sp.groupID)
		if err != nil {
			return err
		}

		voter := 0
		for _, opt := range poll.Options {
			for i := 0; i < sp.votes[opt.Text]; i++ {
				voter++
				if _, err := services.Votes.SubmitVote(ctx, domain.SubmitVoteRequest{
					PollID:     poll.PollID,
					OptionID:   opt.ID,
					VoterToken: fmt.Sprintf("seed-%s-%d", sp.groupID, voter),
				}); err != nil {
					return fmt.Errorf("vote in %s: %w", sp.groupID, err)
				}
			}
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
