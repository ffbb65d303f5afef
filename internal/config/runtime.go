package config

import (
	"os"
	"path/filepath"
)

func GetRuntimePath() string {
	path := os.Getenv("MOTORBOT_RUNTIME_PATH")
	if path == "" {
		path = ".motorbot"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
