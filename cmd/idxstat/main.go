package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/addonindex/idxstat/internal/config"
	"github.com/addonindex/idxstat/internal/domain"
	"github.com/addonindex/idxstat/internal/indexstatus"
	"github.com/addonindex/idxstat/internal/log"
	"github.com/addonindex/idxstat/internal/render"
	"github.com/addonindex/idxstat/internal/service"
	"github.com/addonindex/idxstat/internal/tui"
	"github.com/addonindex/idxstat/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                              \r"

// errReported marks a failure that has already been printed
var errReported = errors.New("reported")

type options struct {
	plain      bool
	url        string
	file       string
	filter     string
	only       string
	configPath string
}

func main() {
	var showVersion bool
	var opts options
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&opts.plain, "plain", false, "print the report once instead of starting the interactive view")
	flag.StringVar(&opts.url, "url", "", "server base URL (overrides server.url)")
	flag.StringVar(&opts.file, "file", "", "read a saved status payload instead of fetching")
	flag.StringVar(&opts.filter, "filter", "", "fuzzy filter on item UID (implies --plain)")
	flag.StringVar(&opts.only, "only", "", "show only rows in state okay, error or pending (implies --plain)")
	flag.StringVar(&opts.configPath, "config", "", "config file path")
	flag.Parse()

	if showVersion {
		fmt.Printf("idxstat %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	// Load configuration
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, opts)

	// Setup logger
	logger, closer, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting idxstat", "version", Version)

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

	// Check if configured
	if !cfg.IsConfigured() {
		if !interactive {
			return fmt.Errorf("no status source configured; pass --url or --file, or set server.url in the config")
		}
		return runSetupFlow(cfg, opts.configPath, logger)
	}

	source, err := indexstatus.NewSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create status source: %w", err)
	}
	statusSvc := service.NewStatusService(source, badgePolicy(cfg.UI.RowBadges), logger)

	if !interactive || opts.plain || opts.filter != "" || opts.only != "" {
		return runPlain(statusSvc, opts, logger)
	}
	return runTUI(statusSvc, cfg, logger)
}

// applyFlags lets command line flags override the loaded config
func applyFlags(cfg *config.Config, opts options) {
	if opts.url != "" {
		cfg.Server.URL = opts.url
		cfg.Source.Strategy = config.StrategyFetch
	}
	if opts.file != "" {
		cfg.Source.File = opts.file
		cfg.Source.Strategy = config.StrategyLocal
	}
}

func badgePolicy(rb config.RowBadges) service.RowBadgePolicy {
	if rb == config.RowBadgesStrict {
		return service.BadgeStrict
	}
	return service.BadgeLegacy
}

func runTUI(statusSvc *service.StatusService, cfg *config.Config, logger *slog.Logger) error {
	model := tui.NewModel(statusSvc, cfg.UI.ShowDetail, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")

	// Leave the failure on screen after the alt screen is gone
	if m, ok := final.(tui.Model); ok && m.State.Phase == tui.PhaseFailed {
		fmt.Fprintln(os.Stderr, render.Failure(m.State.Err))
		return errReported
	}
	return nil
}

func runPlain(statusSvc *service.StatusService, opts options, logger *slog.Logger) error {
	var only *domain.ItemState
	if opts.only != "" {
		state, err := domain.ParseItemState(opts.only)
		if err != nil {
			return err
		}
		only = &state
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	showLoading := term.IsTerminal(int(os.Stderr.Fd()))
	if showLoading {
		fmt.Fprint(os.Stderr, render.Loading())
	}
	report, err := statusSvc.Load(ctx)
	if showLoading {
		fmt.Fprint(os.Stderr, clearSpinnerLine)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("interrupted")
		}
		fmt.Fprintln(os.Stderr, render.Failure(err))
		return errReported
	}

	rows := report.Rows
	filtered := false
	if only != nil {
		rows = service.RowsInState(rows, *only)
		filtered = true
	}
	if opts.filter != "" {
		rows = service.FilterRows(rows, opts.filter)
		filtered = true
	}

	width := 0
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	logger.Debug("writing plain report", "rows", len(rows), "filtered", filtered, "width", width)
	return render.Report(os.Stdout, report, render.Options{Width: width, Rows: rows, Filtered: filtered})
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config, configPath string, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to idxstat!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// Loop until the status endpoint answers
	for {
		fmt.Print("Enter your add-on index URL (e.g., https://addons.example.org): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("setup aborted")
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL := strings.TrimSpace(input)

		if serverURL == "" {
			fmt.Println("Server URL cannot be empty. Please try again.")
			continue
		}

		cfg.Server.URL = serverURL
		creds := indexstatus.Credentials{Token: cfg.Server.Token}

		fmt.Println()
		items, err := probeWithSpinner(cfg.StatusURL(), creds)
		if errors.Is(err, domain.ErrAuthFailed) {
			fmt.Println("The server requires an access token.")
			token, rerr := readSecret("Token: ")
			if rerr != nil {
				return fmt.Errorf("failed to read token: %w", rerr)
			}
			cfg.Server.Token = token
			creds.Token = token
			items, err = probeWithSpinner(cfg.StatusURL(), creds)
		}
		if err != nil {
			logger.Warn("setup probe failed", "url", cfg.StatusURL(), "error", err)
			fmt.Printf("\n✗ Could not read indexing status: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			cfg.Server.Token = ""
			continue
		}

		fmt.Printf("✓ Found %d item(s) to index\n", items)
		break
	}

	path, err := config.SaveConfig(cfg, configPath)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	logger.Info("config saved", "path", path)

	fmt.Println()
	fmt.Printf("✓ Configuration saved to %s\n", path)
	fmt.Println()
	fmt.Println("Run idxstat again to start the application.")

	return nil
}

// readSecret prompts for input without echoing it
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// probeWithSpinner probes the status endpoint with a visual spinner
func probeWithSpinner(statusURL string, creds indexstatus.Credentials) (int, error) {
	type result struct {
		items int
		err   error
	}
	resultCh := make(chan result, 1)

	// Probe applies its own timeout
	go func() {
		items, err := indexstatus.Probe(context.Background(), statusURL, creds)
		resultCh <- result{items, err}
	}()

	frame := 0
	fmt.Printf("\r%s Checking %s...", styles.SpinnerFrames[frame], statusURL)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print("\r\033[K")
			return res.items, res.err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking %s...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], statusURL)
		}
	}
}
