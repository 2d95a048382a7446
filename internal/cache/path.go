package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	app_info "github.com/robgonnella/ipscannr/internal/app-info"
	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/logger"
)

// ResolvePath returns preferred if its directory is writable, otherwise a
// fallback location in the user's cache directory
func ResolvePath(preferred string) (string, error) {
	log := logger.New()

	if preferred == "" {
		preferred = DefaultFileName
	}

	err := checkWritable(preferred)

	if err == nil {
		return preferred, nil
	}

	log.Warn().Err(err).Str("path", preferred).Msg("cache path not writable, trying fallback")

	userCacheDir, err := os.UserCacheDir()

	if err == nil {
		fallback := filepath.Join(userCacheDir, app_info.NAME, DefaultFileName)

		if err := os.MkdirAll(filepath.Dir(fallback), 0755); err == nil {
			if err := checkWritable(fallback); err == nil {
				return fallback, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", exception.ErrNoFallbackPath, preferred)
}

// FormatAge renders how long ago t was relative to now
func FormatAge(t time.Time, now time.Time) string {
	if now.Sub(t) < time.Minute {
		return "just now"
	}

	return humanize.RelTime(t, now, "ago", "from now")
}

func checkWritable(path string) error {
	probe, err := os.CreateTemp(filepath.Dir(path), ".ipscannr-probe-*")

	if err != nil {
		return err
	}

	name := probe.Name()
	probe.Close()

	return os.Remove(name)
}
