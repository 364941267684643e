package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	c, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !strings.HasSuffix(c.StorageDir, "pocketdiary") {
		t.Errorf("unexpected storage dir %q", c.StorageDir)
	}
	if c.Database != DefaultDatabase {
		t.Errorf("expected database %q, got %q", DefaultDatabase, c.Database)
	}
	if c.SettingsBackend != SettingsBackendDatabase {
		t.Errorf("expected database settings backend, got %q", c.SettingsBackend)
	}
	if c.Server.Listen != DefaultListen {
		t.Errorf("expected listen %q, got %q", DefaultListen, c.Server.Listen)
	}
	if c.Watch.Debounce.Duration != DefaultDebounce {
		t.Errorf("expected debounce %v, got %v", DefaultDebounce, c.Watch.Debounce)
	}
	loc, err := c.Location()
	if err != nil || loc != time.Local {
		t.Errorf("expected local zone, got %v (%v)", loc, err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
storage_dir = "` + dir + `"
database = "mine.db"
timezone = "Europe/Madrid"
settings_backend = "file"
settings_file = "` + filepath.Join(dir, "s.toml") + `"

[server]
listen = ":9000"

[watch]
debounce = "1s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.DatabasePath() != filepath.Join(dir, "mine.db") {
		t.Errorf("unexpected database path %q", c.DatabasePath())
	}
	if c.SettingsBackend != SettingsBackendFile || c.SettingsFile != filepath.Join(dir, "s.toml") {
		t.Errorf("unexpected settings backend %q %q", c.SettingsBackend, c.SettingsFile)
	}
	if c.Server.Listen != ":9000" {
		t.Errorf("unexpected listen %q", c.Server.Listen)
	}
	if c.Watch.Debounce.Duration != time.Second {
		t.Errorf("unexpected debounce %v", c.Watch.Debounce)
	}
	loc, err := c.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Madrid" {
		t.Errorf("unexpected location %s", loc)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "storage_dir = = 1"},
		{"bad backend", `settings_backend = "cloud"`},
		{"bad timezone", `timezone = "Mars/Olympus"`},
		{"bad duration", "[watch]\ndebounce = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			content := `storage_dir = "` + dir + `"` + "\n" + tt.content
			if tt.name == "bad toml" {
				content = tt.content
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDatabasePathAbsolute(t *testing.T) {
	c := &Config{StorageDir: "/data", Database: "/elsewhere/diary.db"}
	if c.DatabasePath() != "/elsewhere/diary.db" {
		t.Errorf("expected absolute database path to win, got %q", c.DatabasePath())
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "config.toml")
	c := &Config{StorageDir: filepath.Join(dir, "data")}

	if err := c.SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig of template: %v", err)
	}
	if loaded.StorageDir != c.StorageDir {
		t.Errorf("expected storage dir %q in template, got %q", c.StorageDir, loaded.StorageDir)
	}
	if loaded.Server.Listen != DefaultListen {
		t.Errorf("expected template listen %q, got %q", DefaultListen, loaded.Server.Listen)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	c := &Config{StorageDir: dir, Database: "x.db", SettingsBackend: SettingsBackendFile, Server: ServerConfig{Listen: ":1"}}
	if err := c.SaveConfig(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Database != "x.db" || loaded.Server.Listen != ":1" || loaded.SettingsFile == "" {
		t.Errorf("unexpected round trip %+v", loaded)
	}
}
