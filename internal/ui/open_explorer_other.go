//go:build !windows && !darwin

package ui

import "os/exec"

// openInFileManager opens dir with the desktop's default handler
func openInFileManager(dir string) error {
	if _, err := exec.LookPath("xdg-open"); err != nil {
		return nil
	}
	return exec.Command("xdg-open", dir).Start()
}
