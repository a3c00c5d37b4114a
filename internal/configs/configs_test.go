package configs

import (
	"reflect"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Environment != EnvDevelopment {
		t.Errorf("Environment = %q, want %q", cfg.Environment, EnvDevelopment)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.PublicDir != "./public" {
		t.Errorf("PublicDir = %q, want %q", cfg.PublicDir, "./public")
	}
	if !cfg.ProfanityFilter {
		t.Error("ProfanityFilter = false, want true")
	}
	if cfg.MessageRate != 5 || cfg.MessageBurst != 10 {
		t.Errorf("rate = %v/%d, want 5/10", cfg.MessageRate, cfg.MessageBurst)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "8443")
	t.Setenv("ALLOWED_ORIGINS", "https://chat.example.com, ,https://admin.example.com ")
	t.Setenv("PROFANITY_FILTER", "false")
	t.Setenv("PUBLIC_DIR", "/srv/chat")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.Port != 8443 {
		t.Errorf("Port = %d, want 8443", cfg.Port)
	}
	wantOrigins := []string{"https://chat.example.com", "https://admin.example.com"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, wantOrigins) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, wantOrigins)
	}
	if cfg.ProfanityFilter {
		t.Error("ProfanityFilter = true, want false")
	}
	if cfg.PublicDir != "/srv/chat" {
		t.Errorf("PublicDir = %q, want %q", cfg.PublicDir, "/srv/chat")
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric port", "PORT", "abc"},
		{"privileged port", "PORT", "80"},
		{"port too large", "PORT", "70000"},
		{"zero rate", "MESSAGE_RATE", "0"},
		{"zero burst", "MESSAGE_BURST", "0"},
		{"bad bool", "PROFANITY_FILTER", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() with %s=%q succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
