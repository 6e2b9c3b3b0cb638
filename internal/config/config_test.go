package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("Default() has validation errors: %v", ValidationErrors(errs))
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Endpoint.TimeoutSeconds != 45 {
		t.Errorf("timeout_seconds = %d, want 45", cfg.Endpoint.TimeoutSeconds)
	}
	if cfg.Endpoint.Timeout() != 45*time.Second {
		t.Errorf("Timeout() = %s", cfg.Endpoint.Timeout())
	}
	if cfg.Session.MaxAgeHours != 24 {
		t.Errorf("max_age_hours = %d, want 24", cfg.Session.MaxAgeHours)
	}
	if cfg.Output.SpecFile != "SPEC.md" {
		t.Errorf("spec_file = %q", cfg.Output.SpecFile)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestValidate_Endpoint(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty base url", func(c *Config) { c.Endpoint.BaseURL = "" }, "endpoint.base_url"},
		{"relative base url", func(c *Config) { c.Endpoint.BaseURL = "stages/api" }, "endpoint.base_url"},
		{"zero timeout", func(c *Config) { c.Endpoint.TimeoutSeconds = 0 }, "endpoint.timeout_seconds"},
		{"huge timeout", func(c *Config) { c.Endpoint.TimeoutSeconds = 601 }, "endpoint.timeout_seconds"},
		{"negative retries", func(c *Config) { c.Endpoint.MaxRetries = -1 }, "endpoint.max_retries"},
		{"too many retries", func(c *Config) { c.Endpoint.MaxRetries = 11 }, "endpoint.max_retries"},
		{"negative delay", func(c *Config) { c.Endpoint.RetryBaseDelayMs = -5 }, "endpoint.retry_base_delay_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("Validate() = no errors, want one")
			}
			if errs[0].Field != tt.field {
				t.Errorf("field = %s, want %s", errs[0].Field, tt.field)
			}
		})
	}
}

func TestValidate_PersonaFilter(t *testing.T) {
	cfg := Default()
	cfg.Personas.Filter = "data-*"
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("valid glob rejected: %v", errs)
	}

	cfg.Personas.Filter = "[unclosed"
	if errs := cfg.Validate(); len(errs) != 1 || errs[0].Field != "personas.filter" {
		t.Errorf("Validate() = %v, want a personas.filter error", errs)
	}
}

func TestValidate_WatchRequiresFile(t *testing.T) {
	cfg := Default()
	cfg.Personas.Watch = true
	errs := cfg.Validate()
	if len(errs) != 1 || errs[0].Field != "personas.watch" {
		t.Errorf("Validate() = %v, want a personas.watch error", errs)
	}

	cfg.Personas.File = "panel.yaml"
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("Validate() with file set = %v", errs)
	}
}

func TestValidate_Theme(t *testing.T) {
	cfg := Default()
	cfg.TUI.Theme = "solarized"
	errs := cfg.Validate()
	if len(errs) != 1 || errs[0].Field != "tui.theme" {
		t.Errorf("Validate() = %v, want a tui.theme error", errs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") || !strings.Contains(msg, "a: bad") {
		t.Errorf("Error() = %q", msg)
	}

	one := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	if one.Error() != "a: bad (got: 1)" {
		t.Errorf("single error = %q", one.Error())
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := expandHome("~/logs"); got != "/home/tester/logs" {
		t.Errorf("expandHome(~/logs) = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expandHome(/abs/path) = %q", got)
	}
}

func TestSessionResolveDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	s := SessionConfig{}
	if got := s.ResolveDir(); got != "/tmp/xdg/specsmith/sessions" {
		t.Errorf("ResolveDir() = %q", got)
	}
	s.Dir = "/data/sessions"
	if got := s.ResolveDir(); got != "/data/sessions" {
		t.Errorf("ResolveDir() = %q", got)
	}
}
