package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DataPaths holds where shopsavvy keeps its files
type DataPaths struct {
	BaseDir    string // per-user data directory
	StorePath  string // SQLite store
	ConfigFile string // optional shopsavvy.yaml
}

// DetectDataPaths returns the default data locations for the current OS
func DetectDataPaths() (DataPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library/Application Support/shopsavvy")
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = filepath.Join(xdg, "shopsavvy")
		} else {
			base = filepath.Join(home, ".local/share/shopsavvy")
		}
	default:
		base = filepath.Join(home, ".shopsavvy")
	}

	return DataPaths{
		BaseDir:    base,
		StorePath:  filepath.Join(base, "store.db"),
		ConfigFile: filepath.Join(base, "shopsavvy.yaml"),
	}, nil
}

// ResolveStorePath returns custom when set, otherwise the detected default.
// A directory is resolved to store.db inside it.
func ResolveStorePath(custom string) (string, error) {
	if custom == "" {
		paths, err := DetectDataPaths()
		if err != nil {
			return "", err
		}
		return paths.StorePath, nil
	}
	if custom == ":memory:" {
		return custom, nil
	}
	if info, err := os.Stat(custom); err == nil && info.IsDir() {
		return filepath.Join(custom, "store.db"), nil
	}
	return custom, nil
}
