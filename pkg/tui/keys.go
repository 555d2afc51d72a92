package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Stop  key.Binding
	Start key.Binding
	Reset key.Binding
	Help  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	Start: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "start"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Start, k.Reset, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Stop, k.Start, k.Reset},
		{k.Help, k.Quit},
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	canvasStyles = map[Style]lipgloss.Style{
		StyleLinkPositive: lipgloss.NewStyle().Foreground(lipgloss.Color("#3A6EA5")),
		StyleLinkNegative: lipgloss.NewStyle().Foreground(lipgloss.Color("#A53A3A")),
		StyleLinkUnknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		StyleNodeUnknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		StyleNodeLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#4477FF")),
		StyleNodeMid:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
		StyleNodeHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4400")).Bold(true),
		StyleFiring:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true),
		StyleToken:        lipgloss.NewStyle().Foreground(lipgloss.Color("#FF00FF")).Bold(true),
		StylePopupBorder:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StylePopupTitle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		StylePopupText:    lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
	}
)
