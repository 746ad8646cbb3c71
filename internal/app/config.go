package app

import (
	"os"
	"path/filepath"
	"runtime"
)

// ClientConfig defines the parameters one room visit needs.
type ClientConfig struct {
	RoomURL     string
	Username    string
	Password    string
	SessionPath string
	DBPath      string
	DebugAddr   string
}

// DefaultDBPath returns a per-user data path for the bundled SQLite file.
func DefaultDBPath() string {
	if env := os.Getenv("COWATCH_DB_PATH"); env != "" {
		return env
	}
	if env := os.Getenv("COWATCH_DATA_DIR"); env != "" {
		return filepath.Join(env, "cowatch.db")
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cowatch", "cowatch.db")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Cowatch", "cowatch.db")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "Cowatch", "cowatch.db")
		}
		return filepath.Join(home, ".local", "share", "cowatch", "cowatch.db")
	}
	return filepath.Join(".", ".cowatch", "cowatch.db")
}

// DefaultSessionPath returns where the sign-in session file lives.
func DefaultSessionPath() string {
	if env := os.Getenv("COWATCH_SESSION_PATH"); env != "" {
		return env
	}
	return filepath.Join(filepath.Dir(DefaultDBPath()), "session.json")
}
