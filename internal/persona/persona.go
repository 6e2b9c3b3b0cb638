// Package persona defines the expert panel that participates in fan-out
// pipeline stages. Each agent carries a system prompt and sampling
// temperature; only enabled agents are sent to the remote stages.
package persona

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Agent is one configured expert viewpoint.
type Agent struct {
	Name         string  `json:"agent" yaml:"name"`
	Role         string  `json:"role" yaml:"role"`
	SystemPrompt string  `json:"systemPrompt" yaml:"system_prompt"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	Enabled      bool    `json:"enabled" yaml:"enabled"`
}

// Panel holds the configured set of agents. It is safe for concurrent use;
// Reload may be called while readers iterate over snapshots.
type Panel struct {
	mu     sync.RWMutex
	agents []Agent
}

// NewPanel creates a Panel from the given agents.
func NewPanel(agents []Agent) *Panel {
	return &Panel{agents: append([]Agent(nil), agents...)}
}

// DefaultPanel returns the built-in expert panel used when no personas file
// is configured.
func DefaultPanel() *Panel {
	return NewPanel([]Agent{
		{
			Name:         "architect",
			Role:         "Systems Architect",
			SystemPrompt: "You are a pragmatic systems architect. Focus on component boundaries, data flow, and long-term maintainability.",
			Temperature:  0.4,
			Enabled:      true,
		},
		{
			Name:         "pragmatist",
			Role:         "Staff Engineer",
			SystemPrompt: "You are a staff engineer who has shipped many products. Focus on what can actually be built with a small team.",
			Temperature:  0.5,
			Enabled:      true,
		},
		{
			Name:         "skeptic",
			Role:         "Security & Risk Reviewer",
			SystemPrompt: "You are a security-minded reviewer. Challenge assumptions, surface failure modes, abuse cases, and compliance risks.",
			Temperature:  0.6,
			Enabled:      true,
		},
		{
			Name:         "advocate",
			Role:         "Product & UX Advocate",
			SystemPrompt: "You represent the end user. Push back on anything that adds friction or ignores the core user journey.",
			Temperature:  0.7,
			Enabled:      true,
		},
		{
			Name:         "data-engineer",
			Role:         "Data Engineer",
			SystemPrompt: "You own the data model. Focus on storage, schema evolution, consistency, and the analytics the product will need.",
			Temperature:  0.4,
			Enabled:      true,
		},
	})
}

// personasFile is the on-disk YAML shape.
type personasFile struct {
	Agents []agentSpec `yaml:"agents"`
}

// agentSpec mirrors Agent with an optional enabled flag (absent = true).
type agentSpec struct {
	Name         string  `yaml:"name"`
	Role         string  `yaml:"role"`
	SystemPrompt string  `yaml:"system_prompt"`
	Temperature  float64 `yaml:"temperature"`
	Enabled      *bool   `yaml:"enabled"`
}

// LoadFile reads a panel from a YAML personas file.
func LoadFile(path string) (*Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("personas: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML personas data.
func Parse(data []byte) (*Panel, error) {
	var file personasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("personas: parsing: %w", err)
	}
	if len(file.Agents) == 0 {
		return nil, fmt.Errorf("personas: no agents defined")
	}

	agents := make([]Agent, 0, len(file.Agents))
	seen := make(map[string]bool)
	for i, spec := range file.Agents {
		if spec.Name == "" {
			return nil, fmt.Errorf("personas: agent %d has no name", i)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("personas: duplicate agent name %q", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Temperature < 0 || spec.Temperature > 1 {
			return nil, fmt.Errorf("personas: agent %q temperature %v out of range [0, 1]", spec.Name, spec.Temperature)
		}
		enabled := true
		if spec.Enabled != nil {
			enabled = *spec.Enabled
		}
		agents = append(agents, Agent{
			Name:         spec.Name,
			Role:         spec.Role,
			SystemPrompt: spec.SystemPrompt,
			Temperature:  spec.Temperature,
			Enabled:      enabled,
		})
	}
	return NewPanel(agents), nil
}

// All returns a copy of every configured agent, enabled or not.
func (p *Panel) All() []Agent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Agent(nil), p.agents...)
}

// Enabled returns a copy of the enabled agents, in configuration order.
func (p *Panel) Enabled() []Agent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Agent
	for _, a := range p.agents {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// Filter returns the enabled agents whose names match the given glob
// pattern (e.g. "arch*" or "{architect,skeptic}").
func (p *Panel) Filter(pattern string) ([]Agent, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("personas: bad filter %q: %w", pattern, err)
	}
	var out []Agent
	for _, a := range p.Enabled() {
		if g.Match(a.Name) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Lead returns the first enabled agent. The refinement front door uses a
// single persona for its clarifying question.
func (p *Panel) Lead() (Agent, bool) {
	enabled := p.Enabled()
	if len(enabled) == 0 {
		return Agent{}, false
	}
	return enabled[0], true
}

// Names returns the sorted names of all configured agents.
func (p *Panel) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.agents))
	for i, a := range p.agents {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// Replace swaps the panel contents. Used by the file watcher on reload.
func (p *Panel) Replace(agents []Agent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agents = append([]Agent(nil), agents...)
}
