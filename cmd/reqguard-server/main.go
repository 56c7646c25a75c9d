package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reqguard/internal/core/service"
	"github.com/yndnr/reqguard/internal/infra/buildinfo"
	"github.com/yndnr/reqguard/internal/infra/confloader"
	"github.com/yndnr/reqguard/internal/infra/shutdown"
	"github.com/yndnr/reqguard/internal/infra/tlsroots"
	"github.com/yndnr/reqguard/internal/server/config"
	"github.com/yndnr/reqguard/internal/server/httpserver"
	"github.com/yndnr/reqguard/internal/server/localserver"
	"github.com/yndnr/reqguard/internal/telemetry/logger"
	"github.com/yndnr/reqguard/internal/telemetry/metric"
	"github.com/yndnr/reqguard/pkg/windowtoken"
)

func main() {
	app := &cli.App{
		Name:    "reqguard-server",
		Usage:   "validate Auth tokens and JSON bodies in front of an HTTP API",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML configuration file",
				EnvVars: []string{"REQGUARD_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (overrides server.http.addr)",
			},
			&cli.StringFlag{
				Name:  "upstream",
				Usage: "upstream base URL (overrides server.upstream)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (overrides log.level)",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("config"), map[string]any{
				"server.http.addr": c.String("addr"),
				"server.upstream":  c.String("upstream"),
				"log.level":        c.String("log-level"),
			})
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string, overrides map[string]any) error {
	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	started := time.Now()
	info := buildinfo.Get()
	log.Info("starting reqguard-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile,
		"settings", config.Sanitize(cfg),
	)

	validator, err := newValidator(cfg)
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}
	if cfg.Auth.InsecurePlaintext {
		log.Warn("insecure plaintext auth enabled: the raw shared secret is accepted as a token")
	}

	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics = metric.NewRegistry()
	}

	var (
		upstream  *url.URL
		transport http.RoundTripper
	)
	if cfg.Server.Upstream != "" {
		if upstream, err = url.Parse(cfg.Server.Upstream); err != nil {
			return fmt.Errorf("parse upstream: %w", err)
		}
		if upstream.Scheme == "https" {
			roots, err := tlsroots.LoadPool(cfg.Server.UpstreamCAFile)
			if err != nil {
				return fmt.Errorf("load upstream CA: %w", err)
			}
			transport = roots.Transport()
		}
	}

	limiter := service.NewClientLimiter(cfg.Server.RateLimit)
	clientIP, err := httpserver.NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("init client IP resolver: %w", err)
	}

	// Draining fails /ready so load balancers stop routing here while
	// in-flight traffic is still served.
	var draining atomic.Bool

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Validator:         validator,
		Limiter:           limiter,
		ClientIP:          clientIP,
		Metrics:           metrics,
		Logger:            log,
		Upstream:          upstream,
		UpstreamTransport: transport,
		MaxBodyBytes:      cfg.Server.MaxBodyBytes,
		EnableAudit:       cfg.Server.EnableAudit,
		Version:           info.Version,
		Ready:             func() bool { return !draining.Load() },
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reload := func() error {
		return reloadConfig(configFile, overrides, log, metrics)
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, reload, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	var tlsConfig *tls.Config
	if cfg.Server.HTTP.TLSCertFile != "" {
		reloader, err := tlsroots.NewCertReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
		reloader.StartAsync()
		shutdownHandler.OnShutdown(func(context.Context) error {
			return reloader.Stop()
		})
		tlsConfig = reloader.ServerTLSConfig()
	}

	if cfg.Server.AdminSocket != "" {
		admin := localserver.New(cfg.Server.AdminSocket, localserver.NewHandler(localserver.Actions{
			Status: func() localserver.Status {
				return localserver.Status{
					Version:  info.Version,
					Started:  started,
					Draining: draining.Load(),
					LogLevel: logger.GetLevel(),
					Clients:  limiter.Len(),
				}
			},
			SetDraining: func(v bool) {
				draining.Store(v)
				log.Info("drain state changed", "draining", v)
			},
			Reload: reload,
			SetLogLevel: func(level string) error {
				if _, err := logger.ParseLevel(level); err != nil {
					return err
				}
				logger.SetLevel(level)
				log.Info("log level changed", "level", logger.GetLevel())
				return nil
			},
			Shutdown: cancel,
		}), log)
		if err := admin.Listen(); err != nil {
			return err
		}
		go func() {
			if err := admin.Serve(); err != nil {
				log.Error("admin socket error", "error", err)
			}
		}()
		shutdownHandler.OnShutdown(admin.Shutdown)
		log.Info("admin socket listening", "path", admin.Addr())
	}

	// Registered last so it runs first.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	go limiter.Run(ctx, time.Minute, service.DefaultLimiterIdle)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"upstream", cfg.Server.Upstream,
			"tls", tlsConfig != nil,
		)

		var err error
		if tlsConfig != nil {
			err = httpServer.ListenAndServeTLS(tlsConfig)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	select {
	case err := <-serveErr:
		return err
	default:
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file, environment and
// command-line overrides.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{
		confloader.WithKnownKeys(config.Keys()...),
		confloader.WithOverrides(overrides),
	}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newValidator builds the RequestValidator from the auth section.
func newValidator(cfg *config.ServerConfig) (*service.RequestValidator, error) {
	digest, err := windowtoken.ParseDigest(cfg.Auth.Digest)
	if err != nil {
		return nil, err
	}
	tokens, err := service.NewTokenValidator(service.TokenValidatorConfig{
		SharedSecret:      cfg.Auth.SharedSecret,
		InsecurePlaintext: cfg.Auth.InsecurePlaintext,
		Digest:            digest,
	})
	if err != nil {
		return nil, err
	}
	return service.NewRequestValidator(tokens, service.SystemClock), nil
}

// reloadConfig re-reads configuration and applies log.level. Auth
// settings are fixed for the life of the process.
func reloadConfig(path string, overrides map[string]any, log *slog.Logger, metrics *metric.Registry) error {
	next, err := loadConfig(path, overrides)
	if err != nil {
		log.Error("config reload failed", "error", err)
		recordReload(metrics, "error")
		return err
	}
	if next.Log.Level != logger.GetLevel() {
		log.Info("log level changed", "from", logger.GetLevel(), "to", next.Log.Level)
		logger.SetLevel(next.Log.Level)
	}
	recordReload(metrics, "success")
	return nil
}

// watchConfig calls reload whenever the config file changes.
func watchConfig(path string, reload func() error, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		reload()
	})
	watcher.StartAsync()

	return watcher, nil
}

func recordReload(metrics *metric.Registry, status string) {
	if metrics != nil {
		metrics.RecordConfigReload(status)
	}
}
