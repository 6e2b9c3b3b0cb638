package tui

import "github.com/charmbracelet/lipgloss"

// Palette defines the color scheme for a theme. Colors meet WCAG AA
// contrast requirements against a dark terminal background.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Border    lipgloss.Color
}

// DefaultPalette returns the default purple/green dark palette.
func DefaultPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500
	}
}

// MonokaiPalette returns the classic Monokai editor palette.
func MonokaiPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#F92672"), // Monokai pink/magenta
		Secondary: lipgloss.Color("#A6E22E"), // Monokai green
		Warning:   lipgloss.Color("#E6DB74"), // Monokai yellow
		Error:     lipgloss.Color("#F92672"),
		Muted:     lipgloss.Color("#75715E"), // Comment gray
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#49483E"),
	}
}

// DraculaPalette returns the Dracula palette.
func DraculaPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#BD93F9"), // Dracula purple
		Secondary: lipgloss.Color("#50FA7B"), // Dracula green
		Warning:   lipgloss.Color("#F1FA8C"), // Dracula yellow
		Error:     lipgloss.Color("#FF5555"),
		Muted:     lipgloss.Color("#6272A4"), // Dracula comment
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#44475A"),
	}
}

// NordPalette returns the Nord cool blue-gray palette.
func NordPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#88C0D0"), // Nord frost cyan
		Secondary: lipgloss.Color("#A3BE8C"), // Nord green
		Warning:   lipgloss.Color("#EBCB8B"), // Nord yellow
		Error:     lipgloss.Color("#BF616A"), // Nord red
		Muted:     lipgloss.Color("#4C566A"),
		Text:      lipgloss.Color("#ECEFF4"),
		Border:    lipgloss.Color("#434C5E"),
	}
}

// PaletteFor maps a theme name to its palette, defaulting for unknown names.
func PaletteFor(theme string) Palette {
	switch theme {
	case "monokai":
		return MonokaiPalette()
	case "dracula":
		return DraculaPalette()
	case "nord":
		return NordPalette()
	default:
		return DefaultPalette()
	}
}

// Styles holds the pre-built lipgloss styles for the watch view.
type Styles struct {
	Title      lipgloss.Style
	Header     lipgloss.Style
	StageDone  lipgloss.Style
	StageLive  lipgloss.Style
	StageTodo  lipgloss.Style
	Agent      lipgloss.Style
	Message    lipgloss.Style
	Vote       lipgloss.Style
	ErrorTitle lipgloss.Style
	ErrorBody  lipgloss.Style
	Paused     lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles builds the style set for a palette.
func NewStyles(p Palette) *Styles {
	return &Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Header:     lipgloss.NewStyle().Foreground(p.Text),
		StageDone:  lipgloss.NewStyle().Foreground(p.Secondary),
		StageLive:  lipgloss.NewStyle().Bold(true).Foreground(p.Warning),
		StageTodo:  lipgloss.NewStyle().Foreground(p.Muted),
		Agent:      lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Message:    lipgloss.NewStyle().Foreground(p.Text),
		Vote:       lipgloss.NewStyle().Foreground(p.Secondary),
		ErrorTitle: lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		ErrorBody:  lipgloss.NewStyle().Foreground(p.Error),
		Paused:     lipgloss.NewStyle().Bold(true).Foreground(p.Warning),
		Help:       lipgloss.NewStyle().Foreground(p.Muted),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
	}
}
