//go:build darwin

package ui

import "os/exec"

// openInFileManager opens dir in Finder
func openInFileManager(dir string) error {
	return exec.Command("open", dir).Start()
}
