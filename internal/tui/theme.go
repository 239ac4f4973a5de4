package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines all colors used by the tutor TUI.
// Use DarkTheme() or LightTheme() to get a pre-built theme,
// or construct a custom Theme.
type Theme struct {
	Primary        lipgloss.Color // warm accent — title, input cursor
	Secondary      lipgloss.Color // cool accent — focused settings value
	Accent         lipgloss.Color // mode banner
	Error          lipgloss.Color // failing score band, error status
	Warning        lipgloss.Color // low score band, pending spinner
	Success        lipgloss.Color // high score band, confirmations
	Info           lipgloss.Color // mid score band, tutor label
	Text           lipgloss.Color // primary text
	TextMuted      lipgloss.Color // hints, captions, debug line
	BackgroundElem lipgloss.Color // focused settings field background
	Border         lipgloss.Color // separators
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#fab283"),
		Secondary:      lipgloss.Color("#5c9cf5"),
		Accent:         lipgloss.Color("#9d7cd8"),
		Error:          lipgloss.Color("#e06c75"),
		Warning:        lipgloss.Color("#f5a742"),
		Success:        lipgloss.Color("#7fd88f"),
		Info:           lipgloss.Color("#56b6c2"),
		Text:           lipgloss.Color("#eeeeee"),
		TextMuted:      lipgloss.Color("#808080"),
		BackgroundElem: lipgloss.Color("#1e1e1e"),
		Border:         lipgloss.Color("#484848"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#b35c00"),
		Secondary:      lipgloss.Color("#0550ae"),
		Accent:         lipgloss.Color("#6639ba"),
		Error:          lipgloss.Color("#cf222e"),
		Warning:        lipgloss.Color("#bf8700"),
		Success:        lipgloss.Color("#116329"),
		Info:           lipgloss.Color("#0969da"),
		Text:           lipgloss.Color("#1f2328"),
		TextMuted:      lipgloss.Color("#656d76"),
		BackgroundElem: lipgloss.Color("#f6f8fa"),
		Border:         lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds all lipgloss styles derived from a Theme.
// Constructed once from a Theme and stored in tuiModel.
type styles struct {
	title   lipgloss.Style
	banner  lipgloss.Style
	student lipgloss.Style
	tutor   lipgloss.Style
	dim     lipgloss.Style
	text    lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
	pending lipgloss.Style
	border  lipgloss.Style

	// settings row
	fieldLabel  lipgloss.Style
	fieldValue  lipgloss.Style
	fieldActive lipgloss.Style

	// score bands
	scoreHigh lipgloss.Style
	scoreMid  lipgloss.Style
	scoreLow  lipgloss.Style
	scoreFail lipgloss.Style
}

// newStyles builds all styles from a theme.
func newStyles(t Theme) styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		banner:  lipgloss.NewStyle().Foreground(t.Accent),
		student: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		tutor:   lipgloss.NewStyle().Bold(true).Foreground(t.Info),
		dim:     lipgloss.NewStyle().Foreground(t.TextMuted),
		text:    lipgloss.NewStyle().Foreground(t.Text),
		status:  lipgloss.NewStyle().Foreground(t.Success),
		err:     lipgloss.NewStyle().Foreground(t.Error),
		pending: lipgloss.NewStyle().Foreground(t.Warning),
		border:  lipgloss.NewStyle().Foreground(t.Border),

		fieldLabel:  lipgloss.NewStyle().Foreground(t.TextMuted),
		fieldValue:  lipgloss.NewStyle().Foreground(t.Text),
		fieldActive: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Background(t.BackgroundElem),

		scoreHigh: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		scoreMid:  lipgloss.NewStyle().Bold(true).Foreground(t.Info),
		scoreLow:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		scoreFail: lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// scoreStyle picks the band style for a score line.
func (s styles) scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return s.scoreHigh
	case score >= 60:
		return s.scoreMid
	case score >= 40:
		return s.scoreLow
	default:
		return s.scoreFail
	}
}
