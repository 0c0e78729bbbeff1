package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aspizu/rxhkd/internal/cli"
	"github.com/aspizu/rxhkd/internal/config"
	"github.com/aspizu/rxhkd/internal/executor"
	"github.com/aspizu/rxhkd/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rxhkd",
	Short: "rxhkd - X11 hotkey daemon with modes",
	Long: `rxhkd grabs the key chords listed in its bind file and runs the
associated shell commands. A "mode" bind switches to a nested set of binds
until one of them fires.

Run without a subcommand to start the daemon.

Examples:
  rxhkd                                # Run with ~/.config/rxhkd/rxhkdrc
  rxhkd -c ./rxhkdrc                   # Run with another bind file
  rxhkd dump -o json                   # Print the parsed bind tree
  rxhkd dump -q '[].chord.key'         # Query the tree with JMESPath
  rxhkd dump --watch                   # Re-print on every save
  rxhkd cheatsheet                     # Show all binds by mode
  rxhkd keys page                      # Fuzzy-search key names
  rxhkd history -n 20                  # Recently triggered binds`,
	Version:       version.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the hotkey daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd)
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the parsed bind tree",
	Long: `Print the bind tree parsed from the bind file.

Lines the parser cannot read end the file silently, so dump shows exactly
what the daemon will grab. The text format is valid bind file syntax.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ResolveBindsFile(flagConfig)
		if err != nil {
			return err
		}
		opts := cli.DumpOptions{Path: path, Output: outputOptions()}
		if flagWatch {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.Watch(ctx, cmd.OutOrStdout(), opts, newLogger(loadSettingsOrDefault()))
		}
		return cli.Dump(cmd.OutOrStdout(), opts)
	},
}

var cheatsheetCmd = &cobra.Command{
	Use:   "cheatsheet",
	Short: "Show every bind grouped by mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ResolveBindsFile(flagConfig)
		if err != nil {
			return err
		}
		return cli.Cheatsheet(cmd.OutOrStdout(), path)
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys [query]",
	Short: "List modifier keywords and key names",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		return cli.Keys(cmd.OutOrStdout(), query, outputOptions())
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a bind interactively and run its command",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ResolveBindsFile(flagConfig)
		if err != nil {
			return err
		}
		settings := loadSettingsOrDefault()
		runner := executor.NewRunner(settings.Shell, newLogger(settings))
		if err := runner.Check(); err != nil {
			return err
		}
		err = cli.Pick(cli.PickOptions{Path: path, Runner: runner})
		if errors.Is(err, cli.ErrPickCancelled) {
			return nil
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently triggered binds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(settingsPath())
		if err != nil {
			return err
		}
		return cli.History(cmd.OutOrStdout(), cli.HistoryOptions{
			DatabasePath: settings.Database,
			Limit:        flagLimit,
			Chord:        flagChord,
			Clear:        flagClear,
			Output:       outputOptions(),
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show trigger statistics per chord",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(settingsPath())
		if err != nil {
			return err
		}
		return cli.Stats(cmd.OutOrStdout(), cli.StatsOptions{
			DatabasePath: settings.Database,
			Clear:        flagClear,
			Output:       outputOptions(),
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rxhkd %s\n", version.Version)
		if !flagCheck {
			return nil
		}
		update, err := version.NewChecker().Check(cmd.Context(), version.Version)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}
		if update.Available {
			fmt.Fprintf(out, "rxhkd %s is available: %s\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(out, "up to date")
		}
		return nil
	},
}

// Global flags
var (
	flagConfig   string
	flagSettings string
)

// Daemon flags
var (
	flagDisplay  string
	flagLogLevel string
	flagNoRecord bool
)

// Output flags
var (
	flagOutput  string
	flagQuery   string
	flagNoColor bool
	flagWatch   bool
	flagLimit   int
	flagChord   string
	flagClear   bool
	flagCheck   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Bind file (default $XDG_CONFIG_HOME/rxhkd/rxhkdrc)")
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Settings file (default $XDG_CONFIG_HOME/rxhkd/settings.yaml)")

	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&flagDisplay, "display", "", "X display (default $DISPLAY)")
		cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
		cmd.Flags().BoolVar(&flagNoRecord, "no-history", false, "Do not record triggered binds")
	}

	for _, cmd := range []*cobra.Command{dumpCmd, keysCmd, historyCmd, statsCmd} {
		cmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (json/yaml/text)")
		cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command)")
		cmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable syntax highlighting")
	}

	dumpCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Re-print whenever the bind file changes")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 50, "Number of entries to show (0 for all)")
	historyCmd.Flags().StringVar(&flagChord, "chord", "", "Only show one chord (e.g. \"super + m\")")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all history")
	statsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all statistics")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(cheatsheetCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func outputOptions() cli.OutputOptions {
	return cli.OutputOptions{
		Format: flagOutput,
		Query:  flagQuery,
		Color:  cli.ColorEnabled(os.Stdout, flagNoColor),
	}
}
