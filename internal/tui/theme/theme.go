package theme

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Date     lipgloss.Style
	Channel  lipgloss.Style
	Selector lipgloss.Style
	Status   lipgloss.Style
	Notice   lipgloss.Style

	InfoTitle lipgloss.Style
	InfoMeta  lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpPeach := lipgloss.Color("#fab387")
	cpOverlay1 := lipgloss.Color("#7f849c")

	return Theme{
		Date:      lipgloss.NewStyle().Foreground(cpTeal),
		Channel:   lipgloss.NewStyle().Foreground(cpLavender),
		Selector:  lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		Status:    lipgloss.NewStyle().Foreground(cpText),
		Notice:    lipgloss.NewStyle().Foreground(cpPeach),
		InfoTitle: lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		InfoMeta:  lipgloss.NewStyle().Foreground(cpOverlay1),
	}
}
