package persona

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const samplePersonas = `
agents:
  - name: architect
    role: Systems Architect
    system_prompt: Focus on boundaries.
    temperature: 0.4
  - name: skeptic
    role: Risk Reviewer
    system_prompt: Challenge everything.
    temperature: 0.6
    enabled: true
  - name: retired
    role: Former Advisor
    system_prompt: Unused.
    temperature: 0.5
    enabled: false
`

func TestParse(t *testing.T) {
	panel, err := Parse([]byte(samplePersonas))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	all := panel.All()
	if len(all) != 3 {
		t.Fatalf("All() = %d agents, want 3", len(all))
	}
	if !all[0].Enabled {
		t.Error("enabled should default to true when absent")
	}
	if all[2].Enabled {
		t.Error("explicit enabled: false not honored")
	}

	enabled := panel.Enabled()
	if len(enabled) != 2 {
		t.Errorf("Enabled() = %d agents, want 2", len(enabled))
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "agents: []"},
		{"missing name", "agents:\n  - role: X\n    temperature: 0.5"},
		{"duplicate name", "agents:\n  - name: a\n    temperature: 0.5\n  - name: a\n    temperature: 0.5"},
		{"temperature too high", "agents:\n  - name: a\n    temperature: 1.5"},
		{"temperature negative", "agents:\n  - name: a\n    temperature: -0.1"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("Parse() succeeded, want error")
			}
		})
	}
}

func TestPanel_Filter(t *testing.T) {
	panel, err := Parse([]byte(samplePersonas))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, err := panel.Filter("arch*")
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "architect" {
		t.Errorf("Filter(arch*) = %v, want [architect]", got)
	}

	// Filter only sees enabled agents.
	got, err = panel.Filter("*")
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Filter(*) = %d agents, want 2", len(got))
	}

	if _, err := panel.Filter("[invalid"); err == nil {
		t.Error("Filter with bad pattern should error")
	}
}

func TestPanel_Lead(t *testing.T) {
	panel, err := Parse([]byte(samplePersonas))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	lead, ok := panel.Lead()
	if !ok || lead.Name != "architect" {
		t.Errorf("Lead() = %v, %v; want architect", lead.Name, ok)
	}

	empty := NewPanel(nil)
	if _, ok := empty.Lead(); ok {
		t.Error("Lead() on empty panel should report false")
	}
}

func TestDefaultPanel(t *testing.T) {
	panel := DefaultPanel()
	if len(panel.Enabled()) == 0 {
		t.Fatal("default panel has no enabled agents")
	}
	for _, a := range panel.All() {
		if a.Temperature < 0 || a.Temperature > 1 {
			t.Errorf("agent %s temperature %v out of range", a.Name, a.Temperature)
		}
		if a.SystemPrompt == "" {
			t.Errorf("agent %s has no system prompt", a.Name)
		}
	}
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	if err := os.WriteFile(path, []byte(samplePersonas), 0644); err != nil {
		t.Fatal(err)
	}

	panel, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	w, err := Watch(path, panel, nil)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	updated := "agents:\n  - name: solo\n    role: Solo\n    system_prompt: Just me.\n    temperature: 0.3\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		agents := panel.All()
		if len(agents) == 1 && agents[0].Name == "solo" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("panel was not reloaded after file write")
}
