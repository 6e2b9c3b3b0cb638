package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specsmith/specsmith/internal/config"
	"github.com/specsmith/specsmith/internal/stage"
)

func TestBuildPanel_Default(t *testing.T) {
	cfg := config.Default()
	panel, err := buildPanel(cfg)
	if err != nil {
		t.Fatalf("buildPanel() error = %v", err)
	}
	if len(panel.Enabled()) == 0 {
		t.Error("default panel has no enabled personas")
	}
}

func TestBuildPanel_Filter(t *testing.T) {
	cfg := config.Default()
	cfg.Personas.Filter = "arch*"
	panel, err := buildPanel(cfg)
	if err != nil {
		t.Fatalf("buildPanel() error = %v", err)
	}
	agents := panel.Enabled()
	if len(agents) != 1 || agents[0].Name != "architect" {
		t.Errorf("filtered panel = %+v", agents)
	}
}

func TestBuildPanel_FilterMatchesNothing(t *testing.T) {
	cfg := config.Default()
	cfg.Personas.Filter = "nobody-*"
	if _, err := buildPanel(cfg); err == nil {
		t.Error("buildPanel() succeeded with an empty filter result")
	}
}

func TestBuildPanel_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.yaml")
	yaml := `agents:
  - name: minimalist
    role: Minimalist
    system_prompt: Keep it small.
    temperature: 0.3
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Personas.File = path
	panel, err := buildPanel(cfg)
	if err != nil {
		t.Fatalf("buildPanel() error = %v", err)
	}
	agents := panel.All()
	if len(agents) != 1 || agents[0].Name != "minimalist" || !agents[0].Enabled {
		t.Errorf("panel = %+v", agents)
	}
}

func TestBuildClient_RetryWrapping(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint.MaxRetries = 2
	if _, ok := buildClient(cfg).(*stage.RetryClient); !ok {
		t.Error("retries configured but client is not a RetryClient")
	}

	cfg.Endpoint.MaxRetries = 0
	if _, ok := buildClient(cfg).(*stage.HTTPClient); !ok {
		t.Error("retries disabled but client is not a bare HTTPClient")
	}
}

func TestBuildDeps(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Enabled = false
	cfg.Session.Dir = t.TempDir()

	d, err := buildDeps(cfg)
	if err != nil {
		t.Fatalf("buildDeps() error = %v", err)
	}
	defer d.Close()

	if d.orch == nil || d.bus == nil || d.store == nil {
		t.Error("buildDeps() left collaborators nil")
	}
	if cfg.Session.MaxAge() != 24*time.Hour {
		t.Errorf("MaxAge() = %s", cfg.Session.MaxAge())
	}
}
