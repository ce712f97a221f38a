package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/arena-sync/internal/config"
	"github.com/DoyleJ11/arena-sync/internal/engine"
	"github.com/DoyleJ11/arena-sync/internal/httpapi"
	"github.com/DoyleJ11/arena-sync/internal/hub"
	"github.com/DoyleJ11/arena-sync/internal/transport"
)

// loopInterval is how often the scheduling goroutine wakes up. Timers inside
// the engine run off the elapsed time between wakeups.
const loopInterval = 50 * time.Millisecond

var CLI struct {
	Debug bool `help:"Enable debug logging." env:"ARENA_DEBUG"`

	Serve struct {
		URL              string        `help:"Game server base url." env:"ARENA_URL" default:"${url}"`
		Token            string        `help:"API token sent as X-Auth-Token." env:"API_TOKEN"`
		TickRate         time.Duration `help:"Arena poll interval." env:"ARENA_TICK_RATE" default:"${tick_rate}"`
		AutoReconnect    bool          `help:"Reconnect after repeated poll failures." env:"ARENA_AUTO_RECONNECT" default:"true" negatable:""`
		Timeout          time.Duration `help:"Per-request timeout." env:"ARENA_TIMEOUT" default:"${timeout}"`
		PollFailureLimit int           `help:"Consecutive poll failures before reconnecting, 0 disables." env:"ARENA_POLL_FAILURE_LIMIT" default:"${poll_failure_limit}"`
		Listen           string        `help:"Address for the local HTTP and WebSocket API." env:"ARENA_LISTEN" default:"${listen}"`
	} `cmd:"" default:"withargs" help:"Keep a session with the game server and serve it locally."`

	Env struct {
	} `cmd:"" help:"Write a .env template to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	// .env values must be in the environment before kong reads env tags.
	if err := config.LoadEnv(".env"); err != nil {
		writeError(err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name("arenasync"),
		kong.Description("keeps an ant arena session in sync and serves it to local bots"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"url":                config.DefaultURL,
			"tick_rate":          config.DefaultTickRate.String(),
			"timeout":            config.DefaultTimeout.String(),
			"poll_failure_limit": fmt.Sprint(config.DefaultPollFailureLimit),
			"listen":             config.DefaultListen,
		})

	switch ctx.Command() {
	case "env":
		fmt.Print(config.EnvTemplate())
		return
	}

	log, err := newLogger(CLI.Debug)
	if err != nil {
		writeError(err)
	}
	defer log.Sync()

	cfg := config.Session{
		URL:              CLI.Serve.URL,
		Token:            CLI.Serve.Token,
		TickRate:         CLI.Serve.TickRate,
		AutoReconnect:    CLI.Serve.AutoReconnect,
		Timeout:          CLI.Serve.Timeout,
		PollFailureLimit: CLI.Serve.PollFailureLimit,
		Listen:           CLI.Serve.Listen,
	}
	if err := serve(log, cfg); err != nil {
		log.Error("exiting", zap.Error(err))
		log.Sync()
		writeError(err)
	}
}

func serve(log *zap.Logger, cfg config.Session) error {
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			return fmt.Errorf("%w: create a .env file with API_TOKEN=<your token> (see `arenasync env`)", err)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	h := hub.New(log)
	eng := engine.New(gctx, cfg, transport.New(cfg, log), h, log)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.SetupRoutes(h, eng, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// Hijacked websocket connections are not closed by Shutdown; ending
	// their subscriptions makes the handlers return.
	srv.RegisterOnShutdown(h.Close)

	g.Go(func() error {
		ticker := time.NewTicker(loopInterval)
		defer ticker.Stop()
		return eng.Run(gctx, ticker.C)
	})

	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.Listen),
			zap.String("server", cfg.BaseURL()),
			zap.Duration("tick_rate", cfg.TickRate),
			zap.Bool("auto_reconnect", cfg.AutoReconnect),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Info("stopped")
	return err
}
