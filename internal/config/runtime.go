package config

import (
	"os"
	"path/filepath"
)

func GetRuntimePath() string {
	path := os.Getenv("MEDGRAPH_RUNTIME_PATH")
	if path == "" {
		path = ".medgraph"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

func IsDebug() bool {
	return os.Getenv("MEDGRAPH_DEBUG") == "1" || os.Getenv("MEDGRAPH_DEBUG") == "true"
}
