package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"morph-bang/internal/app"
	"morph-bang/internal/config"
	"morph-bang/internal/morph"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config named by the environment, falling back to defaults
// when the file does not exist.
func loadConfig() (*config.Config, string, error) {
	defaults := app.GetDefaults()
	path := defaults["config_path"]

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("reading config: %w", err)
	}
	if dir, ok := defaults["log_dir"]; ok {
		cfg.LogDir = dir
	}
	return cfg, path, nil
}

// newApp reads the config and creates a MorphApp. The caller must defer app.Close().
// command identifies the CLI command being run (e.g. "run", "handle").
func newApp(cmd *cobra.Command, command string, opts app.Options, parameters ...string) (*app.MorphApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts.Verbose, _ = cmd.Flags().GetBool("verbose")
	a, err := app.NewMorphApp(cfg, command, opts, parameters...)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "morph-bang",
	Short:        "Rename-triggered file conversion daemon",
	SilenceUsage: true,
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the configured root and convert triggered renames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "run", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Run(ctx)
	},
}

// handle command
var handleCmd = &cobra.Command{
	Use:   "handle PATH...",
	Short: "Dispatch triggered paths once, without watching",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "handle", app.Options{}, args...)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Handle(cmd.Context(), args)
	},
}

// versions command
var versionsCmd = &cobra.Command{
	Use:   "versions PATH",
	Short: "List the version history of a logical path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, _ := cmd.Flags().GetUint32("uid")

		a, err := newApp(cmd, "versions", app.Options{NoJournal: true}, args...)
		if err != nil {
			return err
		}
		defer a.Close()

		dir, entries, err := a.Versions(args[0], uid)
		if err != nil {
			return err
		}

		fmt.Printf("Version directory: %s\n", dir)
		if len(entries) == 0 {
			fmt.Println("No versions recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-8s  %10d  %s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.Ext,
				e.Size,
				e.Name,
			)
		}
		return nil
	},
}

// journal command
var journalCmd = &cobra.Command{
	Use:   "journal [PATH]",
	Short: "View recently handled events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "journal", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		records, err := a.Journal(cmd.Context(), path, limit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		width := 0
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				width = w
			}
		}
		for _, rec := range records {
			fmt.Println(fit(formatRecord(rec), width))
		}
		return nil
	},
}

func formatRecord(rec morph.EventRecord) string {
	mode := "!"
	if rec.Destructive {
		mode = "!!"
	}
	line := fmt.Sprintf("%s  %-10s  %-8s  %s  %s%s",
		rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
		rec.Action,
		rec.Duration().Truncate(time.Millisecond),
		rec.Path,
		mode,
		rec.TargetExt,
	)
	if rec.Error != "" {
		line += "  error: " + rec.Error
	}
	return line
}

// fit truncates line to width columns; a zero width leaves it untouched.
func fit(line string, width int) string {
	if width <= 0 || len(line) <= width {
		return line
	}
	if width <= 3 {
		return line[:width]
	}
	return line[:width-3] + "..."
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := app.GetDefaults()["config_path"]

		if err := config.Init(path, config.NewConfig()); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Watch Root: %s\n", cfg.WatchRoot)
		fmt.Printf("App Name:   %s\n", cfg.AppName)
		fmt.Printf("Lock TTL:   %s\n", cfg.LockTTL)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Feed:       %s\n", cfg.Feed.Type)
		fmt.Printf("Sniffer:    %s\n", cfg.Classifier.Sniffer)
		fmt.Printf("Rasterizer: %s (%d dpi)\n", cfg.Tools.Rasterizer, cfg.Tools.DPI)
		fmt.Printf("PDF Engine: %s\n", cfg.Tools.PDFEngine)
		fmt.Printf("Timeout:    %s\n", cfg.Tools.Timeout)
		journal := cfg.Journal.Type
		if cfg.Journal.Path != "" {
			journal += " " + cfg.Journal.Path
		}
		fmt.Printf("Journal:    %s\n", journal)
		if cfg.Metrics.Listen != "" {
			fmt.Printf("Metrics:    %s\n", cfg.Metrics.Listen)
		}
		if len(cfg.Tools.Binaries) > 0 {
			var pairs []string
			for tool, bin := range cfg.Tools.Binaries {
				pairs = append(pairs, tool+"="+bin)
			}
			fmt.Printf("Binaries:   %s\n", strings.Join(pairs, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(handleCmd)
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().Uint32("uid", uint32(os.Getuid()), "User whose version history to list")
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().IntP("limit", "n", 50, "Maximum number of events to show")
	rootCmd.AddCommand(configCmd)
}
