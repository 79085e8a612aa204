package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})
)

// Tab styles.
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Focal card styles.
var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	cardEditingStyle = cardStyle.
				BorderForeground(colorCyan)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)
)

// Task row styles.
var (
	checkboxStyle     = lipgloss.NewStyle().Foreground(colorCyan)
	checkedStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	placeholderStyle  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	doneTitleStyle    = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
	doneTimeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	handleStyle       = lipgloss.NewStyle().Foreground(colorDim)
	deleteButtonStyle = lipgloss.NewStyle().Foreground(colorRed)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})

	dropTargetStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	emptyListStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)

	overlayDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	overlayErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)
