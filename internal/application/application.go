package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "bidmatch"

	// EnvPrefix prefixes every environment variable read by bidmatch
	EnvPrefix = "BIDMATCH_"

	// Version is reported by the version command
	Version = "0.3.0"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the bidmatch configuration directory path.
// Linux: ~/.config/bidmatch (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\bidmatch (via os.UserCacheDir)
//
// BIDMATCH_HOME overrides the location, which is what tests use.
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

// Path joins elem onto the application directory, creating the directory
// on first use.
func Path(elem ...string) (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create application directory: %w", err)
	}

	return filepath.Join(append([]string{dir}, elem...)...), nil
}

func lazyLoad() {
	if home := os.Getenv(EnvPrefix + "HOME"); home != "" {
		appDir = home
		return
	}

	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		baseDir, err = os.UserCacheDir()
	default:
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)
		return
	}

	appDir = filepath.Join(baseDir, AppName)
}
