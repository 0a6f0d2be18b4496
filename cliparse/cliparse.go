package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Commands
const (
	CommandServe = "serve"
	CommandCount = "count"
)

type Config struct {
	Command string
	Verbose bool

	// serve
	Port             int
	DatabaseURL      string
	DatabaseType     string
	AdminKeySalt     string
	ElectionSlugSalt string
	BaseURL          string

	// count
	RosterPath  string
	BallotPaths []string
}

// LoadEnv loads variables from .env files into the environment.
// Missing files are ignored; variables already set win.
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ParseFlags picks the command from the first argument and parses its flags.
// Without a command it serves.
func ParseFlags(args []string) (Config, error) {
	command := CommandServe
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case CommandServe:
		return parseServe(args)
	case CommandCount:
		return parseCount(args)
	}
	return Config{}, fmt.Errorf("unknown command %q (want %s or %s)", command, CommandServe, CommandCount)
}

func parseCount(args []string) (Config, error) {
	cfg := Config{Command: CommandCount}

	flags := flag.NewFlagSet("quickly-stv count", flag.ContinueOnError)
	flags.StringVar(&cfg.RosterPath, "roster", "", "Roster file")
	flags.BoolVar(&cfg.Verbose, "v", false, "Print every round")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.RosterPath == "" {
		return Config{}, errors.New("roster file required (use -roster)")
	}
	cfg.BallotPaths = flags.Args()
	if len(cfg.BallotPaths) == 0 {
		return Config{}, errors.New("at least one ballot file or directory required")
	}

	return cfg, nil
}

func parseServe(args []string) (Config, error) {
	cfg := Config{Command: CommandServe}

	flags := flag.NewFlagSet("quickly-stv serve", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	flags.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL for share links")
	flags.BoolVar(&cfg.Verbose, "v", false, "Debug logging")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	flags.StringVar(&cfg.ElectionSlugSalt, "slug-salt", "", "Election slug salt (prefer env)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.ElectionSlugSalt == "" {
		cfg.ElectionSlugSalt = os.Getenv("ELECTION_SLUG_SALT")
	}
	if cfg.ElectionSlugSalt == "" {
		return Config{}, errors.New("ELECTION_SLUG_SALT required")
	}

	return cfg, nil
}
