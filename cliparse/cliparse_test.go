// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every variable ParseFlags reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DATABASE_URL", "DATABASE_TYPE", "BASE_URL", "ADMIN_KEY_SALT", "ELECTION_SLUG_SALT"} {
		t.Setenv(key, "")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("ELECTION_SLUG_SALT", "test-slug")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Command != CommandServe {
		t.Errorf("expected serve command, got %s", cfg.Command)
	}
	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("expected default base URL, got %s", cfg.BaseURL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"serve", "-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-slug-salt", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite default, got %s", cfg.DatabaseType)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no database", []string{"-admin-salt", "s1", "-slug-salt", "s2"}},
		{"no admin salt", []string{"-d", "x.db", "-slug-salt", "s2"}},
		{"no slug salt", []string{"-d", "x.db", "-admin-salt", "s1"}},
		{"bad database type", []string{"-d", "x.db", "-t", "mysql", "-admin-salt", "s1", "-slug-salt", "s2"}},
		{"unknown command", []string{"recount"}},
		{"count without roster", []string{"count", "ballots/"}},
		{"count without ballots", []string{"count", "-roster", "roster.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := ParseFlags(tt.args); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}
}

func TestParseFlags_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")

	if _, err := ParseFlags([]string{"-d", "x.db", "-admin-salt", "s1", "-slug-salt", "s2"}); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestParseFlags_Count(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseFlags([]string{"count", "-roster", "roster.txt", "-v", "ballots/", "extra.txt"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Command != CommandCount {
		t.Errorf("expected count command, got %s", cfg.Command)
	}
	if cfg.RosterPath != "roster.txt" {
		t.Errorf("expected roster.txt, got %s", cfg.RosterPath)
	}
	if !cfg.Verbose {
		t.Error("expected verbose")
	}
	if len(cfg.BallotPaths) != 2 || cfg.BallotPaths[0] != "ballots/" || cfg.BallotPaths[1] != "extra.txt" {
		t.Errorf("unexpected ballot paths %v", cfg.BallotPaths)
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("ADMIN_KEY_SALT")
	os.Unsetenv("ELECTION_SLUG_SALT")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ADMIN_KEY_SALT=from-file\nELECTION_SLUG_SALT=slug-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnv(path); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFlags([]string{"-d", "x.db"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AdminKeySalt != "from-file" {
		t.Errorf("expected salt from .env, got %q", cfg.AdminKeySalt)
	}

	// Missing files are not an error
	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}
