package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/streammark/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDisplayConfig_UnknownTimezone(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Display.Timezone = "Mars/Olympus_Mons"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown time zone should fail validation")
	}
}

func TestDisplayConfig_EmptyStartLabel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Display.StartLabel = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty start label should fail validation")
	}
}

func TestYouTubeConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.YouTube.Endpoint = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("malformed endpoint should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.YouTube.Timeout = 10 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Error("sub-second timeout should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.YouTube.Endpoint = "http://127.0.0.1:9000/"
	if err := cfg.Validate(); err != nil {
		t.Errorf("local endpoint should pass: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	t.Setenv("TEST_YT_KEY", "AIza-test")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "app:\n  log_level: debug\nyoutube:\n  api_key: ${TEST_YT_KEY}\n  timeout: 30s\ndisplay:\n  timezone: UTC\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.YouTube.APIKey != "AIza-test" || cfg.YouTube.Timeout != 30*time.Second {
		t.Errorf("youtube = %+v", cfg.YouTube)
	}
	if cfg.Display.StartLabel != "配信開始" || cfg.App.HTTP.Port != 8080 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	loc, err := cfg.Display.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Location = %v, %v", loc, err)
	}
}
