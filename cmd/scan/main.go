// Command scan walks a directory tree, computes content digests, descends
// into archives, and records the results in a catalog database.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"filecatalog/internal/catalog"
	"filecatalog/internal/config"
	"filecatalog/internal/ignorerules"
	"filecatalog/internal/logging"
	"filecatalog/internal/metrics"
	"filecatalog/internal/scanner"
)

const (
	exitSuccess      = 0
	exitFatalInit    = 1
	exitInterrupted  = 2
	exitHealthFailed = 3

	autoSelectStartPort = 9000
	autoSelectPortRange = 1000

	ignoreRulesFileName = ".catalogignore"
	configFileName      = "catalog.toml"

	metricsPortUnset = -1
)

// scanArgs holds one invocation's resolved flag values.
type scanArgs struct {
	root        string
	machineName string
	dbPath      string
	logPath     string
	metricsHost string
	metricsPort int // metricsPortUnset when --metrics-port was omitted
}

func main() {
	os.Exit(run())
}

func run() int {
	exitCode := exitSuccess
	cmd := newScanCommand(func(a scanArgs) error {
		code, err := runScan(a)
		exitCode = code
		return err
	})
	if err := cmd.Execute(); err != nil && exitCode == exitSuccess {
		exitCode = exitFatalInit
	}
	return exitCode
}

func newScanCommand(runFn func(scanArgs) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a directory tree into the file catalog",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().String("machine-name", "", "label stored in every written FileRecord (required)")
	cmd.Flags().String("db-path", "indexer.db", "catalog file location")
	cmd.Flags().String("log-path", "indexer.log", "scan log file")
	cmd.Flags().String("metrics-host", "0.0.0.0", "bind address for metrics endpoint")
	cmd.Flags().Int("metrics-port", metricsPortUnset, "bind port; 0 = auto-select starting at 9000; omitted = disabled")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		machineName, _ := cmd.Flags().GetString("machine-name")
		if machineName == "" {
			return fmt.Errorf("--machine-name is required")
		}
		dbPath, _ := cmd.Flags().GetString("db-path")
		logPath, _ := cmd.Flags().GetString("log-path")
		metricsHost, _ := cmd.Flags().GetString("metrics-host")
		metricsPort := metricsPortUnset
		if cmd.Flags().Changed("metrics-port") {
			metricsPort, _ = cmd.Flags().GetInt("metrics-port")
		}

		return runFn(scanArgs{
			root:        args[0],
			machineName: machineName,
			dbPath:      dbPath,
			logPath:     logPath,
			metricsHost: metricsHost,
			metricsPort: metricsPort,
		})
	}

	return cmd
}

// runScan performs one end-to-end scan and returns the process exit code
// spec.md §6 defines, plus a non-nil error only when that code should also
// be surfaced as a cobra usage/execution failure.
func runScan(a scanArgs) (int, error) {
	logFile, err := openLogFile(a.logPath)
	if err != nil {
		return exitFatalInit, fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logging.Printf("logging to %s", a.logPath)

	config.PrintBanner()
	config.LogSystemInfo()

	absRoot, err := filepath.Abs(a.root)
	if err != nil {
		return exitFatalInit, fmt.Errorf("resolving root path: %w", err)
	}

	settings, settingsPath := loadSettings(absRoot)
	config.LogSettings(settings, settingsPath)

	ignoreMatcher, err := loadIgnoreMatcher(absRoot, settings)
	if err != nil {
		return exitFatalInit, fmt.Errorf("loading ignore rules: %w", err)
	}

	store, err := catalog.Open(context.Background(), a.dbPath)
	if err != nil {
		return exitFatalInit, fmt.Errorf("opening catalog: %w", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		logging.Error("catalog health check failed: %v", err)
		return exitHealthFailed, err
	}

	metricsSrv, metricsAddr, err := startMetricsServer(a.metricsHost, a.metricsPort)
	if err != nil {
		return exitFatalInit, fmt.Errorf("starting metrics server: %w", err)
	}
	if metricsSrv != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(ctx)
		}()
	}

	metrics.InitializeMetrics(a.machineName)

	actualPort := -1
	if metricsAddr != nil {
		actualPort = metricsAddr.Port
	}
	config.LogScanStarted(a.machineName, absRoot, a.metricsHost, actualPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		config.LogShutdownInitiated(sig.String())
		cancel()
	}()

	coordinator := scanner.New(store, scanner.Options{
		Root:     absRoot,
		Machine:  a.machineName,
		Ignore:   ignoreMatcher,
		Settings: settings,
	})

	summary, err := coordinator.Run(ctx)
	if err != nil {
		logging.Error("scan failed: %v", err)
		return exitFatalInit, err
	}

	logging.Info("scan complete: %d files scanned", summary.FilesScanned)
	config.LogShutdownComplete()

	if summary.Interrupted {
		return exitInterrupted, nil
	}
	return exitSuccess, nil
}

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	logging.SetOutput(f)
	return f, nil
}

func loadSettings(root string) (config.Settings, string) {
	path := filepath.Join(root, configFileName)
	settings, err := config.Load(path)
	if err != nil {
		logging.Warn("loading config file %s: %v, using defaults", path, err)
		return config.Default(), ""
	}
	return settings, path
}

func loadIgnoreMatcher(root string, settings config.Settings) (*ignorerules.Matcher, error) {
	if !settings.EnableIgnoreRules {
		return ignorerules.Disabled, nil
	}
	lines, err := ignorerules.ParseFile(filepath.Join(root, ignoreRulesFileName))
	if err != nil {
		return nil, err
	}
	return ignorerules.New(lines), nil
}

// startMetricsServer resolves the configured metrics port, including the
// auto-select-from-9000 behavior, and starts serving in the background. A
// nil server and address are returned when --metrics-port was omitted.
func startMetricsServer(host string, port int) (*metrics.Server, *net.TCPAddr, error) {
	if port == metricsPortUnset {
		return nil, nil, nil
	}

	var listener net.Listener
	var err error

	if port == 0 {
		for p := autoSelectStartPort; p < autoSelectStartPort+autoSelectPortRange; p++ {
			listener, err = net.Listen("tcp", fmt.Sprintf("%s:%d", host, p))
			if err == nil {
				break
			}
		}
		if listener == nil {
			return nil, nil, fmt.Errorf("no free port found in range starting at %d", autoSelectStartPort)
		}
	} else {
		listener, err = net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
		if err != nil {
			return nil, nil, err
		}
	}

	addr := listener.Addr().(*net.TCPAddr)
	listener.Close()

	srv := metrics.NewServer(host, addr.Port)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logging.Error("metrics server error: %v", err)
		}
	}()

	return srv, addr, nil
}
