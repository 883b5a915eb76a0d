package ui

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

// mimeCache remembers detected types by source path
type mimeCache map[string]string

// lookup detects the MIME type of path from its content
func (c mimeCache) lookup(path string) string {
	if m, ok := c[path]; ok {
		return m
	}
	m := "unknown"
	if mt, err := mimetype.DetectFile(path); err == nil {
		m = mt.String()
	}
	c[path] = m
	return m
}

// DetailLine describes one missing entry
func DetailLine(e model.MissingEntry, mime string, width int) string {
	text := fmt.Sprintf("%s  ·  %s  ·  → %s", mime, FormatSize(e.Size), e.TargetPath)
	return DetailStyle.Width(width).MaxWidth(width).Render(text)
}
