package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/SergeiSkv/rulecheck/analyzer"
	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/version"
)

var (
	jsonOutput    bool
	configPath    string
	compact       bool
	verbose       bool
	logLevel      string
	jobs          int
	failOn        string
	emptyVariadic string
	disable       []string
	withTests     bool
	logger        *slog.Logger
)

// ErrFindings is returned when diagnostics reach the fail threshold
var ErrFindings = errors.New("diagnostics at or above the fail threshold")

var rootCmd = &cobra.Command{
	Use:   "rulecheck [targets...]",
	Short: "rulecheck - deserialization constructor and call site allocation rules",
	Long: `rulecheck checks that deserialization constructor parameters match the
fields they initialize and reports implicit allocations at call sites inside
performance-sensitive code.

Targets are Go package patterns, directories, Go files or program model
documents (.yaml, .json, .msgpack).`,
	Example: `
  rulecheck ./...                      # Analyze every package of the module
  rulecheck ./internal/codec           # Analyze one directory recursively
  rulecheck model.yaml                 # Analyze a program model document
  rulecheck --json ./...               # JSON output for CI/CD
  rulecheck --compact ./...            # Compact IDE-friendly output`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := applyFlags(cmd, config); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		stopInterrupt := context.AfterFunc(ctx, func() { version.Interrupted.Store(true) })
		defer stopInterrupt()

		return runAnalysis(ctx, cmd, args, config)
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Creates a .rulecheck.yaml configuration file with default settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createDefaultConfig(".rulecheck.yaml")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Print(version.String())
	},
}

var listCmd = &cobra.Command{
	Use:   "list-rules",
	Short: "List all available rules",
	Long:  `Shows every diagnostic descriptor with its analyzer and default severity.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available Rules:")
		cmd.Println("================")
		for _, r := range models.Rules() {
			cmd.Printf("• %-8s %-42s %-14s %-8s %s\n",
				r.ID, r.Name, r.Analyzer, strings.ToLower(r.Severity.String()), r.Title)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&compact, "compact", "", false, "Compact IDE-friendly output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Log level: debug, info, warn, error")

	rootCmd.Flags().IntVar(&jobs, "jobs", 0, "Packages analyzed concurrently (0 = unlimited)")
	rootCmd.Flags().StringVar(&failOn, "fail-on", "", "Lowest severity that fails the run: info, warning, error or none")
	rootCmd.Flags().StringVar(&emptyVariadic, "empty-variadic", "", "Report variadic calls without variadic arguments: auto, report or ignore")
	rootCmd.Flags().StringSliceVar(&disable, "disable", nil, "Analyzers to disable (ctorparams, callsitealloc)")
	rootCmd.Flags().BoolVar(&withTests, "tests", false, "Also analyze test files of Go packages")

	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(lowerCmd)

	// Setup logger
	cobra.OnInitialize(initLogger)
}

func initLogger() {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Configure handler based on output format
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time, level, source - only show message and custom attrs
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.SourceKey {
				return slog.Attr{}
			}
			return a
		},
	}

	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func Execute() error {
	return rootCmd.Execute()
}

// applyFlags overrides configuration values with flags set on the command line
func applyFlags(cmd *cobra.Command, config *Config) error {
	flags := cmd.Flags()
	if flags.Changed("fail-on") {
		config.Output.FailOn = failOn
	}
	if flags.Changed("empty-variadic") {
		config.Allocation.EmptyVariadic = emptyVariadic
	}
	if flags.Changed("tests") {
		config.Paths.Tests = withTests
	}
	if jsonOutput {
		config.Output.Format = "json"
	} else if compact {
		config.Output.Format = "compact"
	}
	return config.Disable(disable)
}

func runAnalysis(ctx context.Context, cmd *cobra.Command, targets []string, config *Config) error {
	opts, err := config.Options()
	if err != nil {
		return err
	}
	threshold, failing, err := config.failThreshold()
	if err != nil {
		return err
	}

	units, err := loadTargets(ctx, targets, config)
	if err != nil {
		return err
	}

	diags, err := analyzer.RunUnits(ctx, units, opts, jobs)
	if err != nil {
		if version.Interrupted.Load() {
			slog.Warn("Analysis interrupted")
		}
		return err
	}
	diags = filterExcluded(diags, config)
	failed := failing && exceedsThreshold(diags, threshold)
	diags = limitDiagnostics(diags, config.Output.MaxIssues)

	out := cmd.OutOrStdout()
	switch outputFormat(config.Output.Format, out) {
	case "json":
		if err := outputJSON(out, targets, diags); err != nil {
			return err
		}
	case "compact":
		outputHuman(out, diags, true)
	default:
		outputHuman(out, diags, false)
		slog.Info("Analysis complete", "units", len(units), "diagnostics", len(diags))
	}

	if failed {
		return ErrFindings
	}
	return nil
}

// outputFormat falls back to the compact format when text output does not
// go to a terminal
func outputFormat(format string, out any) string {
	format = strings.ToLower(format)
	if format != "" && format != "text" {
		return format
	}
	if f, ok := out.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return "compact"
	}
	return "text"
}

func createDefaultConfig(configFile string) error {
	config := DefaultConfig()

	// Create YAML config
	yamlData, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	const configFileMode = 0644
	if err := os.WriteFile(configFile, yamlData, configFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created default configuration file: %s\n", configFile)
	fmt.Println("\tEdit this file to customize your analysis settings")
	fmt.Println("")
	fmt.Println("Example usage:")
	fmt.Printf("  rulecheck --config=%s ./...\n", configFile)
	return nil
}
