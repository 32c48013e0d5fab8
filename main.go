package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"verdant/internal/api"
	"verdant/internal/config"
	"verdant/internal/eventbus"
	"verdant/internal/logging"
	"verdant/internal/ui"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		serverURL string
		cfgPath   string
	)

	root := &cobra.Command{
		Use:     "verdant",
		Short:   "Terminal client for your plant-care tracker",
		Long:    "verdant browses your plants, logs watering, fertilizing and pruning\nfor many plants at once, and pages through each plant's care history.",
		Version: getVersion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(serverURL, cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "", "backend server URL (overrides config)")
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	root.AddCommand(loginCmd(&serverURL, &cfgPath))
	return root
}

func runTUI(serverURL, cfgPath string) error {
	logger, logCloser, err := logging.ToFile(filepath.Join(config.Dir(), "verdant.log"))
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logCloser.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create event bus
	bus := eventbus.New(logger)

	var configSvc config.Service
	if cfgPath != "" {
		configSvc = config.NewServiceAt(cfgPath)
	} else {
		configSvc = config.NewServiceWithBus(bus)
	}
	cfg := loadOrCreateConfig(configSvc, logger)
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	client, err := newClient(cfg, logger, func(loginURL string) {
		bus.Publish(eventbus.SessionExpiredEvent{LoginURL: loginURL})
	})
	if err != nil {
		return err
	}
	if err := client.LoadCookies(cookiesPath()); err != nil {
		logger.Warn().Err(err).Msg("could not restore session cookies")
	}

	// Watch the config file so edits apply without a restart
	watcher := config.NewWatcher(configSvc, bus, logger)
	if err := watcher.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("config watcher not started")
	}

	// Create UI model and Bubble Tea program
	uiModel := ui.NewModel(cfg, client, bus, logger)
	p := tea.NewProgram(uiModel, tea.WithAltScreen())
	uiModel.HistoryOps().SetProgram(p)

	// The mounted shell owns the global error surface
	client.RegisterErrorSurface(ui.NewProgramSurface(p))
	defer client.ClearErrorSurface()

	// Forward bus events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			logger.Warn().Msg("event channel full, dropping event")
		}
	}
	for _, eventType := range []eventbus.EventType{
		eventbus.EventSessionExpired,
		eventbus.EventError,
		eventbus.EventConfigChanged,
	} {
		bus.Subscribe(eventType, forward)
	}

	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	logger.Info().Str("server", cfg.ServerURL).Msg("starting UI")
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("error running program")
		return fmt.Errorf("error running program: %w", err)
	}

	// The bus dispatcher may still be forwarding (a late watcher
	// reload, for instance), so the channel is never closed; the
	// process exit reclaims it.
	cancel()
	return nil
}

func loginCmd(serverURL, cfgPath *string) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the backend and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.ToConsole()

			configSvc := config.NewService()
			if *cfgPath != "" {
				configSvc = config.NewServiceAt(*cfgPath)
			}
			cfg := loadOrCreateConfig(configSvc, logger)
			if *serverURL != "" {
				cfg.ServerURL = *serverURL
			}

			if username == "" || password == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Username").Value(&username),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			client, err := newClient(cfg, logger, nil)
			if err != nil {
				return err
			}
			if err := client.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			if err := client.SaveCookies(cookiesPath()); err != nil {
				return err
			}
			fmt.Printf("Logged in to %s as %s\n", cfg.ServerURL, username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	return cmd
}

func newClient(cfg *config.Config, logger zerolog.Logger, onExpired api.SessionExpiredFunc) (*api.Client, error) {
	opts := []api.Option{
		api.WithLoginPath(cfg.LoginPath),
		api.WithTimezone(cfg.Timezone),
		api.WithLogger(logger),
	}
	if onExpired != nil {
		opts = append(opts, api.WithSessionExpiredFunc(onExpired))
	}
	client, err := api.New(cfg.ServerURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// loadOrCreateConfig loads the config, writing the defaults on first
// run so the file exists for the watcher.
func loadOrCreateConfig(svc config.Service, logger zerolog.Logger) *config.Config {
	if _, err := os.Stat(svc.Path()); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := svc.Save(cfg); err != nil {
			logger.Warn().Err(err).Msg("failed to write default config")
		}
		return cfg
	}

	cfg, err := svc.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		return config.DefaultConfig()
	}
	return cfg
}

func cookiesPath() string {
	return filepath.Join(config.Dir(), "cookies.json")
}
