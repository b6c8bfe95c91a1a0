package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"filecatalog/internal/logging"
)

// envPrefix namespaces every environment-variable override so it can't
// collide with unrelated process environment.
const envPrefix = "INDEXER_"

// Settings holds the values named in the configuration file contract:
// archive-descent toggles and size caps, plus the ignore-rules toggle.
type Settings struct {
	ScanArchives       bool  `toml:"scan_archives"`
	MaxArchiveSize     int64 `toml:"max_archive_size"`
	MaxArchiveFileSize int64 `toml:"max_archive_file_size"`
	EnableIgnoreRules  bool  `toml:"enable_ignore_rules"`
}

// Default returns the documented defaults for every setting.
func Default() Settings {
	return Settings{
		ScanArchives:       true,
		MaxArchiveSize:     524_288_000,
		MaxArchiveFileSize: 104_857_600,
		EnableIgnoreRules:  false,
	}
}

// Load reads path if it exists (silently falling back to defaults if it
// does not), then overlays any INDEXER_-prefixed environment variables.
func Load(path string) (Settings, error) {
	settings := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &settings); err != nil {
				return Settings{}, fmt.Errorf("decoding config file %s: %w", path, err)
			}
			logging.Info("  Loaded config file: %s", path)
		} else if !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("stat config file %s: %w", path, err)
		} else {
			logging.Debug("  No config file at %s, using defaults", path)
		}
	}

	applyEnvOverrides(&settings)
	return settings, nil
}

func applyEnvOverrides(settings *Settings) {
	if v, ok := getEnvBool("SCAN_ARCHIVES"); ok {
		settings.ScanArchives = v
	}
	if v, ok := getEnvInt64("MAX_ARCHIVE_SIZE"); ok {
		settings.MaxArchiveSize = v
	}
	if v, ok := getEnvInt64("MAX_ARCHIVE_FILE_SIZE"); ok {
		settings.MaxArchiveFileSize = v
	}
	if v, ok := getEnvBool("ENABLE_IGNORE_RULES"); ok {
		settings.EnableIgnoreRules = v
	}
}

func getEnvBool(suffix string) (bool, bool) {
	raw := os.Getenv(envPrefix + suffix)
	if raw == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		logging.Warn("Invalid boolean for %s%s: %q, ignoring", envPrefix, suffix, raw)
		return false, false
	}
	return parsed, true
}

func getEnvInt64(suffix string) (int64, bool) {
	raw := os.Getenv(envPrefix + suffix)
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logging.Warn("Invalid integer for %s%s: %q, ignoring", envPrefix, suffix, raw)
		return 0, false
	}
	return parsed, true
}
