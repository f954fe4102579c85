package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Afrawles/actionfeed/internal/app"
	"github.com/Afrawles/actionfeed/internal/config"
	"github.com/Afrawles/actionfeed/internal/export"
	"github.com/Afrawles/actionfeed/internal/view"
)

var (
	configPath string
	baseURL    string
	interval   time.Duration
	logLevel   string
	logFormat  string

	htmlPath   string
	listenAddr string
	noColor    bool

	formats   string
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:           "actionfeed",
	Short:         "Poll a repository activity feed and show it live",
	Long:          `actionfeed polls GET /api/actions and renders push, pull request and merge activity with a connectivity indicator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Poll the feed and redraw the terminal on every update",
		Long:  `Polls the feed every interval. Press Enter to refresh immediately.`,
		RunE:  runWatch,
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the feed once and print it",
		RunE:  runFetch,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Fetch the feed once and export a snapshot (json, csv, xlsx)",
		RunE:  runExport,
	}
)

// errDisconnected makes fetch exit non-zero without printing twice.
type errDisconnected struct{}

func (errDisconnected) Error() string { return "feed unreachable" }

func execute() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(errDisconnected); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd, fetchCmd, exportCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "actionfeed.yaml", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Feed base URL (default http://localhost:5000)")
	rootCmd.PersistentFlags().DurationVarP(&interval, "interval", "i", 0, "Polling interval (default 15s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	watchCmd.Flags().StringVar(&htmlPath, "html", "", "Also write the HTML page to this file on every update")
	watchCmd.Flags().StringVar(&listenAddr, "listen", "", "Serve the HTML page and /metrics on this address, e.g. :8090")
	watchCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")

	exportCmd.Flags().StringVarP(&formats, "format", "f", "json", "Comma-separated export formats: json, csv, xlsx")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default reports)")
}

// loadApp applies file, environment and then flag settings.
func loadApp(logOut io.Writer) (*app.Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if baseURL != "" {
		cfg.Feed.BaseURL = baseURL
	}
	if interval > 0 {
		cfg.Poll.Interval = interval
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if htmlPath != "" {
		cfg.Output.HTMLPath = htmlPath
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}

	return app.New(cfg, logOut)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := loadApp(os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := view.NewTerminal(os.Stdout, view.TerminalOptions{
		Title: fmt.Sprintf("Repository activity (%s, every %s, Enter to refresh)", a.Client.URL(), a.Config.Poll.Interval),
		Live:  true,
		Color: !noColor,
	})

	return a.Watch(ctx, term, readEnter(ctx, os.Stdin))
}

// readEnter emits one value per line read from r. The channel closes at EOF.
func readEnter(ctx context.Context, r io.Reader) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := loadApp(os.Stderr)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	term := view.NewTerminal(&buf, view.TerminalOptions{})

	bar := newSpinner("Fetching activity")
	status, err := a.FetchOnce(cmd.Context(), term)
	finishBar(bar)
	if err != nil {
		return err
	}

	if err := term.Flush(); err != nil {
		return err
	}
	if _, err := io.Copy(os.Stdout, &buf); err != nil {
		return err
	}

	if !status.Connected {
		return errDisconnected{}
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	selected := parseCommaList(formats)
	if len(selected) == 0 {
		return fmt.Errorf("no export format given")
	}
	for _, f := range selected {
		if !slices.Contains(export.Formats, f) {
			return fmt.Errorf("unknown format %q (valid: %v)", f, export.Formats)
		}
	}

	a, err := loadApp(os.Stderr)
	if err != nil {
		return err
	}

	bar := newSpinner("Fetching activity")
	snapshot, err := a.Snapshot(cmd.Context())
	finishBar(bar)
	if err != nil {
		return fmt.Errorf("failed to fetch activity: %w", err)
	}

	fmt.Printf("Fetched %d activities from %s\n\n", len(snapshot.Entries), snapshot.Source)

	paths, err := a.Export(snapshot, selected)
	for _, p := range paths {
		fmt.Printf("  -> %s\n", p)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	stats := export.Statistics(snapshot.Entries)
	if len(stats) > 0 {
		fmt.Printf("\nSummary:\n")
		for _, s := range stats {
			fmt.Printf("  %-14s %d\n", s.Label, s.Count)
		}
	}
	return nil
}
