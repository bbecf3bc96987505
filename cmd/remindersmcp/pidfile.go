package main

import (
	"os"
	"path/filepath"
	"strconv"
)

// writePIDFile records the current process ID at path.
func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// removePIDFile deletes path. Cleanup errors are ignored.
func removePIDFile(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
