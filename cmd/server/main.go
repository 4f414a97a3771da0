package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal/config"
	"github.com/scythe504/scribble-server/internal/database"
	"github.com/scythe504/scribble-server/internal/game"
	"github.com/scythe504/scribble-server/internal/logger"
	"github.com/scythe504/scribble-server/internal/server"
	"github.com/scythe504/scribble-server/internal/utils"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	def := config.Default()
	return &cli.Command{
		Name:  "scribble-server",
		Usage: "real-time draw-and-guess game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: def.Addr, Usage: "listen address", Sources: cli.EnvVars("ADDR")},
			&cli.StringFlag{Name: "words-file", Value: def.WordsFile, Usage: "word list file", Sources: cli.EnvVars("WORDS_FILE")},
			&cli.StringFlag{Name: "database-url", Usage: "postgres url; serves words from the database when set", Sources: cli.EnvVars("DATABASE_URL")},
			&cli.BoolFlag{Name: "seed-words", Usage: "import the words file into the database on start", Sources: cli.EnvVars("SEED_WORDS")},
			&cli.StringFlag{Name: "log-level", Value: def.LogLevel, Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.BoolFlag{Name: "log-pretty", Usage: "human readable console logs", Sources: cli.EnvVars("LOG_PRETTY")},
			&cli.DurationFlag{Name: "reconnect-grace", Value: def.ReconnectGrace, Sources: cli.EnvVars("RECONNECT_GRACE")},
			&cli.DurationFlag{Name: "tick-interval", Value: def.TickInterval, Sources: cli.EnvVars("TICK_INTERVAL")},
			&cli.StringFlag{Name: "allowed-origin", Value: def.AllowedOrigin, Sources: cli.EnvVars("ALLOWED_ORIGIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Config{
				Addr:           cmd.String("addr"),
				WordsFile:      cmd.String("words-file"),
				DatabaseURL:    cmd.String("database-url"),
				SeedWords:      cmd.Bool("seed-words"),
				LogLevel:       cmd.String("log-level"),
				LogPretty:      cmd.Bool("log-pretty"),
				ReconnectGrace: cmd.Duration("reconnect-grace"),
				TickInterval:   cmd.Duration("tick-interval"),
				AllowedOrigin:  cmd.String("allowed-origin"),
			}
			return run(ctx, cfg)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	words, closeWords, err := openWordSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWords()

	rooms := game.NewDirectory(cfg.GameConfig(), words)
	defer rooms.Close()
	registry := game.NewRegistry()

	srv := server.NewServer(cfg.Addr, rooms, registry, cfg.WebsocketOptions())

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Interface("phases", cfg.PhaseDurations()).Msg("[run] server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("[run] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("[run] server stopped")
	return nil
}

// openWordSource prefers the database when one is configured, seeding it
// from the words file on request, and otherwise serves the file directly.
func openWordSource(ctx context.Context, cfg config.Config) (game.WordSource, func(), error) {
	if cfg.DatabaseURL == "" {
		list, err := utils.ReadWordFile(cfg.WordsFile)
		if err != nil {
			return nil, nil, err
		}
		return list, func() {}, nil
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}
	store, err := database.NewWordStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if cfg.SeedWords {
		list, err := utils.ReadWordFile(cfg.WordsFile)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		if _, err := store.ImportWords(ctx, list.Words()); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("seed words: %w", err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	if count == 0 {
		store.Close()
		return nil, nil, database.ErrNoWords
	}
	log.Info().Int("words", count).Msg("[openWordSource] serving words from database")
	return store, store.Close, nil
}
