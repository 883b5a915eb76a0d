package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/folderdiff/internal/scanner"
)

const headerProgressBarWidth = 20

// Header displays the compared roots and the current activity
type Header struct {
	source    string
	target    string
	direction scanner.Direction
	width     int
	status    string
	spinner   string
	percent   float64
	showBar   bool
	bar       progress.Model
}

// NewHeader creates a new header component
func NewHeader(source, target string, dir scanner.Direction) Header {
	return Header{
		source:    source,
		target:    target,
		direction: dir,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
			progress.WithWidth(headerProgressBarWidth),
		),
	}
}

// SetRoots updates the displayed roots once they are resolved
func (h *Header) SetRoots(source, target string) {
	h.source = source
	h.target = target
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// SetProgress shows status with a progress bar
func (h *Header) SetProgress(status string, percent float64) {
	h.status = status
	h.percent = percent
	h.showBar = true
}

// SetStatus shows status without a bar
func (h *Header) SetStatus(status string) {
	h.status = status
	h.showBar = false
}

// SetSpinner sets the frame shown before the status, empty hides it
func (h *Header) SetSpinner(frame string) {
	h.spinner = frame
}

// Status returns the current status text
func (h Header) Status() string {
	return h.status
}

// View renders the header
func (h Header) View() string {
	appName := AppNameStyle.Render("FOLDERDIFF")
	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" │ ")

	master, slave := h.source, h.target
	if h.direction == scanner.MissingInSource {
		master, slave = slave, master
	}
	roots := RootStyle.Render(master + " → " + slave)

	right := StatsStyle.Render(h.status)
	if h.spinner != "" {
		right = lipgloss.NewStyle().Foreground(ColorCyan).Render(h.spinner) + " " + right
	}
	if h.showBar {
		right = h.bar.ViewAs(h.percent) + " " + right
	}

	used := lipgloss.Width(appName) + lipgloss.Width(sep) + lipgloss.Width(right)
	// Narrow terminals: shorten the roots first, then drop the bar
	if avail := h.width - used - 3; avail < lipgloss.Width(roots) {
		if avail > 10 {
			roots = RootStyle.Render(truncateLeft(master+" → "+slave, avail))
		} else {
			roots = ""
			right = StatsStyle.Render(h.status)
		}
	}

	gap := max(h.width-lipgloss.Width(appName)-lipgloss.Width(sep)-lipgloss.Width(roots)-lipgloss.Width(right)-2, 1)
	line := appName + sep + roots + strings.Repeat(" ", gap) + right

	return HeaderStyle.MaxHeight(1).Render(line)
}

// truncateLeft keeps the end of s, which holds the most specific path parts
func truncateLeft(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return "…" + string(runes[len(runes)-width+1:])
}
