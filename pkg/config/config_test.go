package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		User: UserConfig{ID: DefaultUserID},
		Storage: StorageConfig{
			Backend:   "local",
			LocalPath: "/tmp/data.db",
			SQLDSN:    "/tmp/skills.sqlite",
			Timeout:   time.Second,
		},
		Display: DisplayConfig{Format: "table"},
		Watch:   WatchConfig{DebounceInterval: 100 * time.Millisecond},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.User.ID != DefaultUserID {
		t.Errorf("User.ID = %s, want %s", cfg.User.ID, DefaultUserID)
	}

	if cfg.Storage.Backend != "local" {
		t.Errorf("Backend = %s, want local", cfg.Storage.Backend)
	}

	if filepath.Base(cfg.Storage.LocalPath) != "data.db" {
		t.Errorf("LocalPath = %s, want .../data.db", cfg.Storage.LocalPath)
	}

	if filepath.Base(cfg.Storage.SQLDSN) != "skills.sqlite" {
		t.Errorf("SQLDSN = %s, want .../skills.sqlite", cfg.Storage.SQLDSN)
	}

	if !cfg.Display.ColorEnabled {
		t.Error("ColorEnabled = false, want true")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "sql backend",
			mutate: func(c *Config) { c.Storage.Backend = "sql" },
		},
		{
			name:    "blank user",
			mutate:  func(c *Config) { c.User.ID = "  " },
			wantErr: ErrNoUserID,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "postgres" },
			wantErr: ErrInvalidBackend,
		},
		{
			name:    "missing local path",
			mutate:  func(c *Config) { c.Storage.LocalPath = "" },
			wantErr: ErrNoStoragePath,
		},
		{
			name: "missing sql path",
			mutate: func(c *Config) {
				c.Storage.Backend = "sql"
				c.Storage.SQLDSN = ""
			},
			wantErr: ErrNoStoragePath,
		},
		{
			name:    "invalid timeout",
			mutate:  func(c *Config) { c.Storage.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "invalid display format",
			mutate:  func(c *Config) { c.Display.Format = "live" },
			wantErr: ErrInvalidDisplayFormat,
		},
		{
			name:    "invalid debounce",
			mutate:  func(c *Config) { c.Watch.DebounceInterval = -time.Second },
			wantErr: ErrInvalidDebounceInterval,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoragePath(t *testing.T) {
	s := StorageConfig{Backend: "local", LocalPath: "a.db", SQLDSN: "b.sqlite"}
	if s.Path() != "a.db" {
		t.Errorf("Path() = %s, want a.db", s.Path())
	}

	s.Backend = "sql"
	if s.Path() != "b.sqlite" {
		t.Errorf("Path() = %s, want b.sqlite", s.Path())
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		missing bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config file",
			content: `
user:
  id: 3f8e1c2a-9b7d-4e5f-a1c3-2d4b6e8f0a1b
storage:
  backend: sql
  sql_dsn: /tmp/test.sqlite
  timeout: 3s
display:
  format: json
  color_enabled: false
  compact: true
watch:
  debounce_interval: 250ms
logging:
  level: debug
  output: stdout
  format: json
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.User.ID != "3f8e1c2a-9b7d-4e5f-a1c3-2d4b6e8f0a1b" {
					t.Errorf("User.ID = %s", cfg.User.ID)
				}
				if cfg.Storage.Backend != "sql" {
					t.Errorf("Backend = %s, want sql", cfg.Storage.Backend)
				}
				if cfg.Storage.Path() != "/tmp/test.sqlite" {
					t.Errorf("Path() = %s, want /tmp/test.sqlite", cfg.Storage.Path())
				}
				if cfg.Storage.Timeout != 3*time.Second {
					t.Errorf("Timeout = %v, want 3s", cfg.Storage.Timeout)
				}
				if cfg.Display.Format != "json" {
					t.Errorf("Format = %s, want json", cfg.Display.Format)
				}
				if cfg.Display.ColorEnabled {
					t.Error("ColorEnabled = true, want false")
				}
				if !cfg.Display.Compact {
					t.Error("Compact = false, want true")
				}
				if cfg.Watch.DebounceInterval != 250*time.Millisecond {
					t.Errorf("DebounceInterval = %v, want 250ms", cfg.Watch.DebounceInterval)
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
				}
			},
		},
		{
			name: "partial config keeps defaults",
			content: `
logging:
  level: error
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Storage.Backend != "local" {
					t.Errorf("Backend = %s, want local", cfg.Storage.Backend)
				}
				if !cfg.Display.ColorEnabled {
					t.Error("ColorEnabled = false, want default true")
				}
				if cfg.User.ID != DefaultUserID {
					t.Errorf("User.ID = %s, want default", cfg.User.ID)
				}
				if cfg.Logging.Level != "error" {
					t.Errorf("LogLevel = %s, want error", cfg.Logging.Level)
				}
			},
		},
		{
			name:    "invalid values",
			content: "storage:\n  backend: postgres\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: `invalid: yaml: content: [`,
			wantErr: true,
		},
		{
			name:    "non-existent file",
			missing: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.name+".yaml")
			if !tt.missing {
				if err := os.WriteFile(filePath, []byte(tt.content), 0600); err != nil {
					t.Fatalf("Failed to create test file: %v", err)
				}
			}

			cfg, err := NewLoader(filePath).Load()

			if tt.wantErr {
				if err == nil {
					t.Error("Load() error = nil, wantErr = true")
				}
				return
			}

			if err != nil {
				t.Fatalf("Load() error = %v, wantErr = false", err)
			}

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	l := NewLoader("")

	_, err := l.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadFromFile() error = %v, want ErrConfigNotFound", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("user: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err = l.LoadFromFile(bad)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("LoadFromFile() error = %v, want ErrInvalidYAML", err)
	}
}

func TestSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Logging.Level = "debug"
	cfg.Storage.Backend = "sql"

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loadedCfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loadedCfg.Logging.Level != "debug" {
		t.Errorf("Loaded config LogLevel = %s, want debug", loadedCfg.Logging.Level)
	}
	if loadedCfg.Storage.Backend != "sql" {
		t.Errorf("Loaded config Backend = %s, want sql", loadedCfg.Storage.Backend)
	}

	invalid := Default()
	invalid.Storage.Backend = "nope"
	if err := Save(invalid, configPath); err == nil {
		t.Error("Save() of invalid config error = nil")
	}
}

// emptyConfigFile keeps Load away from config files of the machine.
func emptyConfigFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEnvVarOverrides(t *testing.T) {
	t.Setenv(EnvBackend, " SQL ")
	t.Setenv(EnvDB, "/env/skills.sqlite")
	t.Setenv(EnvUser, "env-user")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := NewLoader(emptyConfigFile(t)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != "sql" {
		t.Errorf("Backend = %s, want sql", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLDSN != "/env/skills.sqlite" {
		t.Errorf("SQLDSN = %s, want /env/skills.sqlite", cfg.Storage.SQLDSN)
	}
	if cfg.Storage.LocalPath == "/env/skills.sqlite" {
		t.Error("LocalPath took the sql path")
	}
	if cfg.User.ID != "env-user" {
		t.Errorf("User.ID = %s, want env-user", cfg.User.ID)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
	}
}

func TestEnvDBFollowsLocalBackend(t *testing.T) {
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvDB, "/env/data.db")

	cfg, err := NewLoader(emptyConfigFile(t)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.LocalPath != "/env/data.db" {
		t.Errorf("LocalPath = %s, want /env/data.db", cfg.Storage.LocalPath)
	}
}

func BenchmarkValidate(b *testing.B) {
	cfg := Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cfg.Validate(); err != nil {
			b.Fatal(err)
		}
	}
}
