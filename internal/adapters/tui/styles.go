package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Overland-East-Bay/geo-projects-view/internal/app/mapview"
)

var (
	colorAccent = lipgloss.Color(mapview.SelectedColor)
	colorDim    = lipgloss.Color(mapview.DefaultColor)
	colorError  = lipgloss.Color("#ef4444")
	colorOK     = lipgloss.Color("#22c55e")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	okStyle       = lipgloss.NewStyle().Foreground(colorOK)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// column widths for name, latitude, longitude, status, last updated.
var colWidths = [...]int{28, 13, 14, 12, 16}
