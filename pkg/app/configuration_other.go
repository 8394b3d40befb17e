//go:build !windows

package app

import (
	"os"
	"path/filepath"
)

func defaultConfigurationFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "beat-your-meet", "configuration.yml")
	}
	return "configuration.yml"
}
