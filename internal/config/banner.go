package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"filecatalog/internal/logging"
)

// Build-time variables (injected via -ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// PrintBanner writes the startup banner and build info, mirroring the
// original application's boot sequence.
func PrintBanner() {
	banner := `
------------------------------------------------------------
  ___           _
 |_ _|_ _  __| |_____ __ __ ___ _ _
  | || ' \/ _` + "`" + ` / _ \ \ / -_) '_|
 |___|_||_\__,_\___/_\_\___|_|

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

// LogSystemInfo logs the runtime environment, same fields the original
// startup sequence reported.
func LogSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// LogSettings logs the resolved configuration, file-overlay-then-env style
// like the original CONFIGURATION banner section.
func LogSettings(s Settings, configPath string) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if configPath != "" {
		logging.Info("  Config file:          %s", configPath)
	}
	logging.Info("  scan_archives:        %v", s.ScanArchives)
	logging.Info("  max_archive_size:     %d bytes", s.MaxArchiveSize)
	logging.Info("  max_archive_file_size: %d bytes", s.MaxArchiveFileSize)
	logging.Info("  enable_ignore_rules:  %v", s.EnableIgnoreRules)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())
	logging.Info("")
}

// LogScanStarted reports the endpoints and machine identity a scan is
// about to run with, mirroring the original SERVER STARTED banner.
func LogScanStarted(machine, root string, metricsHost string, metricsPort int) {
	logging.Info("------------------------------------------------------------")
	logging.Info("SCAN STARTING")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Machine:   %s", machine)
	logging.Info("  Root:      %s", root)
	if metricsPort > 0 {
		logging.Info("  Metrics:   http://%s:%d/metrics", metricsHost, metricsPort)
	} else {
		logging.Info("  Metrics:   DISABLED")
	}
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start, mirroring the original banner.
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownComplete logs shutdown completion.
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}
