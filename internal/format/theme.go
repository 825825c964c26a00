package format

import (
	"github.com/charmbracelet/lipgloss"

	"associate-os/internal/model"
)

// ApplyTheme follows the document's darkMode setting so adaptive colors in
// rendered output pick their dark or light variant. It is installed as the
// store's settings hook.
func ApplyTheme(s model.Settings) {
	lipgloss.SetHasDarkBackground(s.DarkMode)
}
