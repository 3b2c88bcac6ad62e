package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/jsvensson/pptxpalette"
	palette "github.com/jsvensson/pptxpalette/internal/color"
	"github.com/jsvensson/pptxpalette/internal/config"
	"github.com/jsvensson/pptxpalette/internal/pipeline"
	"github.com/jsvensson/pptxpalette/internal/script"
	"github.com/jsvensson/pptxpalette/internal/server"
)

var (
	flagConfig  string
	flagEnvFile string
	flagVerbose int
	flagLogFile string
	flagOut     string
	flagScheme  string
	flagListen  string
	flagNoColor bool
	flagCheck   bool
	version     = "dev" // Injected at build time via ldflags
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:               "pptxpalette",
	Short:             "Inspect and edit the theme colors of PowerPoint presentations",
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Print the color schemes of a presentation",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var setCmd = &cobra.Command{
	Use:   "set FILE kind=#rrggbb...",
	Short: "Set scheme slots to new colors",
	Long:  "Set one or more slots, e.g. accent1=#4472C4, in every scheme or in the scheme named by --scheme.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSet,
}

var applyCmd = &cobra.Command{
	Use:   "apply FILE SCRIPT",
	Short: "Apply a palette script to a presentation",
	Args:  cobra.ExactArgs(2),
	RunE:  runApply,
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Print the current palette as a palette script",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format .ppal files",
	Long:  "Format one or more .ppal files in-place. Prints the name of each file that was modified.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the palette editor over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config HCL file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "path to .env file (default "+config.DefaultEnvFile+" if present)")
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file instead of stderr")
	showCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "do not print color swatches")
	setCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output file (default <name>-edited.pptx)")
	setCmd.Flags().StringVar(&flagScheme, "scheme", "", "only edit the scheme with this name")
	applyCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output file (default <name>-edited.pptx)")
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", "", "write the script to this file instead of stdout")
	fmtCmd.Flags().BoolVarP(&flagCheck, "check", "c", false, "check if files are formatted (do not write changes)")
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig, flagEnvFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlags(cfg); err != nil {
		return err
	}

	var logPath *string
	if cfg.LogFile != "" {
		logPath = &cfg.LogFile
	}
	// Commands other than serve only log when asked to.
	verbosity := cfg.LogVerbosity
	if cmd != serveCmd && flagVerbose == 0 {
		verbosity = -1
	}
	commonlog.Configure(verbosity, logPath)
	return nil
}

// applyFlags overrides cfg with the global flags. Repeated -v beyond the
// most verbose level is clamped.
func applyFlags(cfg *config.Config) error {
	if flagVerbose > 0 {
		cfg.LogVerbosity = min(flagVerbose, config.MaxLogVerbosity)
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	return cfg.Validate()
}

func runShow(cmd *cobra.Command, args []string) error {
	deck, err := pptxpalette.Open(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if flagNoColor {
		color.NoColor = true
	}

	out := cmd.OutOrStdout()
	heading := color.New(color.Bold)
	for i, sec := range deck.Sections() {
		if i > 0 {
			fmt.Fprintln(out)
		}
		heading.Fprintf(out, "%s", sec.Name)
		fmt.Fprintf(out, " (%s)\n", sec.Path)
		for _, slot := range sec.Slots {
			fmt.Fprintf(out, "  %s %-8s %-26s %s\n", swatch(slot), slot.Kind, slot.Label, slot.Value)
		}
	}
	return nil
}

func swatch(slot pipeline.SlotView) string {
	if slot.Input == "" || color.NoColor {
		return "  "
	}
	c, err := palette.ParseHex(slot.Input)
	if err != nil {
		return "  "
	}
	return color.BgRGB(int(c.R), int(c.G), int(c.B)).Sprint("  ")
}

func runSet(cmd *cobra.Command, args []string) error {
	assignments, err := pptxpalette.ParseAssignments(args[1:])
	if err != nil {
		return err
	}
	deck, err := pptxpalette.Open(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	n, err := pptxpalette.Assign(deck, flagScheme, assignments)
	if err != nil {
		return err
	}
	return save(cmd, deck, args[0], n)
}

func runApply(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	s, err := script.Parse(args[1], src)
	if err != nil {
		return err
	}
	deck, err := pptxpalette.Open(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	edits, err := s.Apply(deck.Schemes())
	if err != nil {
		return fmt.Errorf("applying %s: %w", args[1], err)
	}
	for _, e := range edits {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s.%s = %s\n", e.Scheme, e.Kind, e.Color.Hex())
	}
	return save(cmd, deck, args[0], len(edits))
}

func save(cmd *cobra.Command, deck *pipeline.Deck, input string, edits int) error {
	out := pptxpalette.OutputPath(input, flagOut)
	if err := pptxpalette.Save(deck, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d slots changed)\n", out, edits)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	deck, err := pptxpalette.Open(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data := script.Export(deck.Schemes())
	if flagOut == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flagOut, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", flagOut, err)
	}
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	hasErrors := false
	needsFormatting := false

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", path, err)
			hasErrors = true
			continue
		}

		content := string(data)
		formatted := script.Format(content)
		if formatted == content {
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		needsFormatting = true

		if !flagCheck {
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error writing %s: %v\n", path, err)
				hasErrors = true
			}
		}
	}

	if hasErrors || (flagCheck && needsFormatting) {
		os.Exit(1)
	}

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
