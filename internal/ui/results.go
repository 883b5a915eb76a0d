package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/report"
)

// ResultsPanel lists the missing entries of a finished scan
type ResultsPanel struct {
	root    string
	entries []model.MissingEntry
	isNew   map[string]bool
	cursor  int
	offset  int // scroll offset
	width   int
	height  int
}

// NewResultsPanel creates an empty results panel
func NewResultsPanel() ResultsPanel {
	return ResultsPanel{isNew: make(map[string]bool)}
}

// SetEntries replaces the listed entries. root is the scanned master root,
// used to shorten paths. Entries added since the previous report are
// badged when changes is set.
func (r *ResultsPanel) SetEntries(root string, entries []model.MissingEntry, changes *report.Changes) {
	r.root = root
	r.entries = entries
	r.cursor = 0
	r.offset = 0
	r.isNew = make(map[string]bool)
	if changes != nil {
		for _, e := range changes.Added {
			r.isNew[e.SourcePath] = true
		}
	}
}

// SetSize sets the panel dimensions
func (r *ResultsPanel) SetSize(w, h int) {
	r.width = w
	r.height = h
}

// Len returns the number of listed entries
func (r ResultsPanel) Len() int {
	return len(r.entries)
}

// Selected returns the entry under the cursor
func (r ResultsPanel) Selected() (model.MissingEntry, bool) {
	if r.cursor >= 0 && r.cursor < len(r.entries) {
		return r.entries[r.cursor], true
	}
	return model.MissingEntry{}, false
}

// MoveUp moves cursor up
func (r *ResultsPanel) MoveUp() {
	if r.cursor > 0 {
		r.cursor--
		r.ensureVisible()
	}
}

// MoveDown moves cursor down
func (r *ResultsPanel) MoveDown() {
	if r.cursor < len(r.entries)-1 {
		r.cursor++
		r.ensureVisible()
	}
}

// PageUp moves cursor up by one page
func (r *ResultsPanel) PageUp() {
	r.cursor = max(r.cursor-r.pageSize(), 0)
	r.ensureVisible()
}

// PageDown moves cursor down by one page
func (r *ResultsPanel) PageDown() {
	r.cursor = max(min(r.cursor+r.pageSize(), len(r.entries)-1), 0)
	r.ensureVisible()
}

// GoToTop moves to first item
func (r *ResultsPanel) GoToTop() {
	r.cursor = 0
	r.offset = 0
}

// GoToBottom moves to last item
func (r *ResultsPanel) GoToBottom() {
	r.cursor = max(len(r.entries)-1, 0)
	r.ensureVisible()
}

func (r ResultsPanel) pageSize() int {
	return max(r.height, 1)
}

func (r *ResultsPanel) ensureVisible() {
	if r.cursor < r.offset {
		r.offset = r.cursor
	}
	if r.cursor >= r.offset+r.pageSize() {
		r.offset = r.cursor - r.pageSize() + 1
	}
}

// displayPath returns the entry path relative to the scanned root
func (r ResultsPanel) displayPath(e model.MissingEntry) string {
	if r.root != "" {
		if rel, err := filepath.Rel(r.root, e.SourcePath); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return e.SourcePath
}

// View renders the list
func (r ResultsPanel) View() string {
	style := ResultsPanelStyle.Width(r.width).Height(r.height)
	if len(r.entries) == 0 {
		empty := lipgloss.NewStyle().Foreground(ColorSuccess).Render("Nothing missing, the trees match.")
		return style.Render(empty)
	}

	maxW := max(r.width-2, 1) // padding
	var lines []string
	for i := r.offset; i < len(r.entries) && len(lines) < r.pageSize(); i++ {
		e := r.entries[i]

		badge := ""
		if r.isNew[e.SourcePath] {
			badge = " " + NewBadge.Render("NEW")
		}
		size := ResultSizeStyle.Render(FormatSize(e.Size))
		line := fmt.Sprintf("%s%s  %s", r.displayPath(e), badge, size)

		itemStyle := ResultItemStyle
		if i == r.cursor {
			itemStyle = ResultItemSelected
		}
		lines = append(lines, itemStyle.Width(maxW).MaxWidth(maxW).Render(line))
	}

	return style.BorderForeground(ColorPrimary).Render(strings.Join(lines, "\n"))
}
