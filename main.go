package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/ldevreaux/marquee/internal/app"
	"github.com/ldevreaux/marquee/internal/backend"
	"github.com/ldevreaux/marquee/internal/config"
	"github.com/ldevreaux/marquee/internal/icons"
	"github.com/ldevreaux/marquee/internal/logging"
	"github.com/ldevreaux/marquee/internal/mpris"
	"github.com/ldevreaux/marquee/internal/notify"
	"github.com/ldevreaux/marquee/internal/plex"
	"github.com/ldevreaux/marquee/internal/report"
	"github.com/ldevreaux/marquee/internal/session"
	"github.com/ldevreaux/marquee/internal/state"
	"github.com/ldevreaux/marquee/internal/stderr"
	"github.com/ldevreaux/marquee/internal/stream"
	"github.com/ldevreaux/marquee/internal/transcode"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCloser, err := logging.Setup(cfg.GetLogLevel())
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logCloser.Close()

	// mpv and libmpv write warnings to stderr, which would corrupt the TUI.
	if err := stderr.Start(); err != nil {
		log.WithError(err).Warn("could not redirect stderr")
	}
	defer stderr.Stop()

	icons.Init(cfg.Icons)

	if !cfg.HasGatewayConfig() {
		return fmt.Errorf("no gateway configured; set gateway.url in ~/.config/marquee/config.toml")
	}

	st, err := state.Open()
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer st.Close()

	clientID, err := st.ClientID()
	if err != nil {
		return fmt.Errorf("loading client id: %w", err)
	}

	playerState, err := st.GetPlayerState()
	if err != nil {
		return fmt.Errorf("loading player state: %w", err)
	}

	gateway := plex.NewClient(cfg.Gateway.URL, clientID)
	transcoder := transcode.NewManager()
	resolver := stream.New(gateway, transcoder)
	reporter := report.New(gateway, st)

	// Flush scrobbles that could not be delivered last run.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if succeeded, failed := reporter.RetryPending(ctx); succeeded > 0 || failed > 0 {
			log.WithFields(log.Fields{"succeeded": succeeded, "failed": failed}).
				Info("retried pending scrobbles")
		}
	}()

	playerCfg := cfg.GetPlayerConfig()
	kind, err := backend.ParseKind(playerCfg.Backend)
	if err != nil {
		return fmt.Errorf("player config: %w", err)
	}

	controller := session.New(session.Config{
		Resolver:   resolver,
		Gateway:    gateway,
		Transcoder: transcoder,
		Reporter:   reporter,
		NewBackend: func() (backend.Player, error) {
			return backend.New(kind, backend.Options{MPVPath: playerCfg.MPVPath})
		},
		Quality: playerState.Quality,
		Volume:  playerState.Volume,
		Muted:   playerState.Muted,
	})
	defer controller.Close()

	if adapter, err := mpris.New(controller); err != nil {
		log.WithError(err).Warn("mpris unavailable")
	} else {
		defer adapter.Close()
	}

	notifier, err := notify.New()
	if err != nil {
		log.WithError(err).Warn("desktop notifications unavailable")
	}

	model := app.New(app.Deps{
		Controller: controller,
		Gateway:    gateway,
		State:      st,
		Notifier:   notifier,
		Player:     playerCfg,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
