package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/scythe504/scribble-server/internal"
	"github.com/scythe504/scribble-server/internal/game"
	"github.com/scythe504/scribble-server/internal/websocket"
)

// Config is everything the server process can be told from flags or the environment.
type Config struct {
	Addr           string
	WordsFile      string
	DatabaseURL    string
	SeedWords      bool
	LogLevel       string
	LogPretty      bool
	ReconnectGrace time.Duration
	TickInterval   time.Duration
	AllowedOrigin  string
}

func Default() Config {
	return Config{
		Addr:           ":8001",
		WordsFile:      "resources/wordlist.txt",
		LogLevel:       "info",
		ReconnectGrace: 60 * time.Second,
		TickInterval:   time.Second,
		AllowedOrigin:  "*",
	}
}

// LoadEnv loads the given .env files (".env" when none are named) into the
// process environment. Missing files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.WordsFile == "" && c.DatabaseURL == "" {
		return errors.New("either a words file or a database url is required")
	}
	if c.SeedWords && (c.WordsFile == "" || c.DatabaseURL == "") {
		return errors.New("seeding words needs both a words file and a database url")
	}
	if c.ReconnectGrace < 0 || c.TickInterval < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// GameConfig converts the settings into room engine settings.
func (c Config) GameConfig() game.Config {
	cfg := game.DefaultConfig()
	if c.ReconnectGrace > 0 {
		cfg.ReconnectGrace = c.ReconnectGrace
	}
	if c.TickInterval > 0 {
		cfg.TickInterval = c.TickInterval
	}
	return cfg
}

func (c Config) WebsocketOptions() websocket.Options {
	opts := websocket.DefaultOptions()
	if c.AllowedOrigin != "" {
		opts.AllowedOrigin = c.AllowedOrigin
	}
	return opts
}

// PhaseDurations reports the configured length of every phase, for startup logging.
func (c Config) PhaseDurations() map[internal.GamePhase]time.Duration {
	return c.GameConfig().PhaseDurations
}
