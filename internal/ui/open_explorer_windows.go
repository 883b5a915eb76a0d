//go:build windows

package ui

import "os/exec"

// openInFileManager opens dir in Windows Explorer
func openInFileManager(dir string) error {
	return exec.Command("explorer.exe", dir).Start()
}
