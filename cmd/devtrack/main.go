package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/landcharge/devtrack/internal/adapters/restapi"
	serveradapter "github.com/landcharge/devtrack/internal/adapters/server"
	servercommon "github.com/landcharge/devtrack/internal/adapters/server/common"
	"github.com/landcharge/devtrack/internal/adapters/storage/sqlite"
	"github.com/landcharge/devtrack/internal/app"
	"github.com/landcharge/devtrack/internal/config"
	"github.com/landcharge/devtrack/internal/platform"
	"github.com/landcharge/devtrack/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

// rootOptions holds the persistent flag state shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// runtimeState bundles the resolved startup configuration for one command run.
type runtimeState struct {
	cfg          config.Config
	paths        platform.Paths
	configPath   string
	dbOverridden bool
	logger       *runtimeLogger
}

// main handles main.
func main() {
	if err := fang.Execute(context.Background(), newRootCmd(os.Stdout, os.Stderr), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the devtrack command tree.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: defaultAppName()}

	root := &cobra.Command{
		Use:           "devtrack",
		Short:         "renewable project development tracker",
		Long:          "devtrack tracks development steps, schedules, and contacts for renewable energy projects.\nWithout a subcommand it opens the step grid against the configured API server.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	root.PersistentFlags().StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", defaultDevMode(), "use dev mode paths (<app>-dev)")

	root.AddCommand(newServeCmd(opts, stderr))
	root.AddCommand(newPathsCmd(opts, stdout))
	return root
}

// newServeCmd builds the HTTP+MCP server subcommand.
func newServeCmd(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the step API and MCP endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, stderr, httpBind, apiEndpoint, mcpEndpoint)
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "HTTP API base endpoint (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from config)")
	return cmd
}

// newPathsCmd builds the resolved-paths subcommand.
func newPathsCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: opts.appName,
				DevMode: opts.devMode,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(stdout, "log: %s\n", paths.LogPath)
			return nil
		},
	}
}

// resolveRuntime loads paths, configuration, and the runtime logger for one
// command run. The caller owns logger shutdown via state.logger.Close.
func resolveRuntime(opts *rootOptions, stderr io.Writer) (runtimeState, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return runtimeState{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("DEVTRACK_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("DEVTRACK_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return runtimeState{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, cfg.Logging, paths.LogPath)
	if err != nil {
		return runtimeState{}, fmt.Errorf("configure runtime logger: %w", err)
	}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	return runtimeState{
		cfg:          cfg,
		paths:        paths,
		configPath:   configPath,
		dbOverridden: dbOverridden,
		logger:       logger,
	}, nil
}

// runTUI runs the step grid against the configured API server.
func runTUI(_ context.Context, opts *rootOptions, stderr io.Writer) error {
	state, err := resolveRuntime(opts, stderr)
	if err != nil {
		return err
	}
	logger := state.logger
	// Keep TUI rendering clean: runtime logs stay in the file sink while the grid is active.
	logger.SetConsoleEnabled(false)
	defer closeLogger(logger, stderr)

	cfg := state.cfg
	client, err := restapi.New(cfg.API.BaseURL, restapi.WithHTTPClient(&http.Client{
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}))
	if err != nil {
		logger.Error("api client setup failed", "base_url", cfg.API.BaseURL, "err", err)
		return fmt.Errorf("configure api client: %w", err)
	}
	logger.Info("api client ready", "base_url", cfg.API.BaseURL, "timeout_seconds", cfg.API.TimeoutSeconds)

	session := app.NewSession(client, app.SessionConfig{Logger: logger.FileSink()})
	m := tui.NewModel(client, session,
		tui.WithDevTypes(cfg.UI.DevTypes),
		tui.WithSpendColumns(cfg.UI.ShowSpendColumns),
		tui.WithHighlightDuration(time.Duration(cfg.UI.HighlightMillis)*time.Millisecond),
		tui.WithLinkBase(cfg.API.BaseURL),
	)
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// runServe runs the serve subcommand flow.
func runServe(ctx context.Context, opts *rootOptions, stderr io.Writer, httpBind, apiEndpoint, mcpEndpoint string) error {
	state, err := resolveRuntime(opts, stderr)
	if err != nil {
		return err
	}
	logger := state.logger
	defer closeLogger(logger, stderr)

	cfg := state.cfg
	if strings.TrimSpace(httpBind) == "" {
		httpBind = cfg.Server.Bind
	}
	if strings.TrimSpace(apiEndpoint) == "" {
		apiEndpoint = cfg.Server.APIEndpoint
	}
	if strings.TrimSpace(mcpEndpoint) == "" {
		mcpEndpoint = cfg.Server.MCPEndpoint
	}

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()

	steps := servercommon.NewStepService(repo, nil, nil)
	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", "http", httpBind, "api", apiEndpoint, "mcp", mcpEndpoint)
	if err := serveCommandRunner(signalCtx, serveradapter.Config{
		HTTPBind:      httpBind,
		APIEndpoint:   apiEndpoint,
		MCPEndpoint:   mcpEndpoint,
		ServerName:    opts.appName,
		ServerVersion: version,
	}, serveradapter.Dependencies{Steps: steps}); err != nil {
		logger.Error("serve flow failed", "err", err)
		return fmt.Errorf("run serve command: %w", err)
	}
	logger.Info("command flow complete", "command", "serve")
	return nil
}

// closeLogger closes the log file sink, reporting failures when the console
// sink is still active.
func closeLogger(logger *runtimeLogger, stderr io.Writer) {
	if err := logger.Close(); err != nil && logger.consoleEnabled {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// defaultAppName resolves the app name from the environment.
func defaultAppName() string {
	if envApp := strings.TrimSpace(os.Getenv("DEVTRACK_APP_NAME")); envApp != "" {
		return envApp
	}
	return "devtrack"
}

// defaultDevMode resolves the dev-mode default from the build and environment.
func defaultDevMode() bool {
	if envDev, ok := parseBoolEnv("DEVTRACK_DEV_MODE"); ok {
		return envDev
	}
	return version == "dev"
}

// parseBoolEnv reads a boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

// runtimeLogger fans log events to a styled console sink and an optional file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	fileSink       *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
}

// newRuntimeLogger configures runtime log sinks from CLI/config state. An
// empty logging level defaults to info; an empty file path disables the file
// sink unless fallbackLogPath is set.
func newRuntimeLogger(stderr io.Writer, appName string, cfg config.LoggingConfig, fallbackLogPath string) (*runtimeLogger, error) {
	levelName := strings.TrimSpace(cfg.Level)
	if levelName == "" {
		levelName = "info"
	}
	level, err := charmLog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}

	logPath := strings.TrimSpace(cfg.File)
	if logPath == "" {
		logPath = strings.TrimSpace(fallbackLogPath)
	}
	if logPath == "" {
		return logger, nil
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.fileSink = fileLogger
	logger.closeFile = logFile.Close
	return logger, nil
}

// FileSink returns the file logger, or a discard logger when none is open.
func (l *runtimeLogger) FileSink() *charmLog.Logger {
	if l == nil || l.fileSink == nil {
		return charmLog.New(io.Discard)
	}
	return l.fileSink
}

// Close closes the optional file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Debug(msg, keyvals...)
	}
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Info(msg, keyvals...)
	}
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Warn(msg, keyvals...)
	}
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Error(msg, keyvals...)
	}
}
