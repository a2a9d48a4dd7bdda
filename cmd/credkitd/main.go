// Command credkitd serves the credential API over HTTP backed by PostgreSQL
// and Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/credkit/modules/account"
	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/auth/pgstore"
	"github.com/dmitrymomot/credkit/pkg/clientip"
	"github.com/dmitrymomot/credkit/pkg/config"
	"github.com/dmitrymomot/credkit/pkg/cookie"
	"github.com/dmitrymomot/credkit/pkg/environment"
	"github.com/dmitrymomot/credkit/pkg/httpserver"
	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/pkg/password"
	"github.com/dmitrymomot/credkit/pkg/pg"
	"github.com/dmitrymomot/credkit/pkg/redis"
	"github.com/dmitrymomot/credkit/pkg/requestid"
	"github.com/dmitrymomot/credkit/pkg/totp"
	"github.com/dmitrymomot/credkit/svc/oauth"
)

type appConfig struct {
	Env             environment.Environment `env:"APP_ENV" envDefault:"development"`
	LogLevel        string                  `env:"LOG_LEVEL"`
	LogFormat       string                  `env:"LOG_FORMAT"`
	OAuthStateStore string                  `env:"OAUTH_STATE_STORE" envDefault:"redis"`
	GitHubEnabled   bool                    `env:"GITHUB_OAUTH_ENABLED" envDefault:"true"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("credkitd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}

	log, err := newLogger(app)
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	var (
		pgCfg      pg.Config
		redisCfg   redis.Config
		httpCfg    httpserver.Config
		cookieCfg  cookie.Config
		totpCfg    totp.Config
		checkerCfg totp.CheckerConfig
		hashCfg    password.Config
		ipCfg      clientip.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&cookieCfg) },
		func() error { return config.Load(&totpCfg) },
		func() error { return config.Load(&checkerCfg) },
		func() error { return config.Load(&hashCfg) },
		func() error { return config.Load(&ipCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgstore.Migrations(), pgCfg, log); err != nil {
		return err
	}

	storeOpts := []pgstore.Option{pgstore.WithMaxAttempts(pgCfg.TxMaxAttempts)}
	key, err := totp.GetEncryptionKey(totpCfg)
	switch {
	case err == nil:
		storeOpts = append(storeOpts, pgstore.WithSecretKey(key))
	case errors.Is(err, totp.ErrEncryptionKeyNotSet) && !app.Env.IsProduction():
		log.WarnContext(ctx, "TOTP_ENCRYPTION_KEY is not set, totp secrets are stored in plain text")
	default:
		return err
	}

	svc := auth.NewService(pgstore.New(pool, storeOpts...),
		auth.WithLogger(log),
		auth.WithPasswordHasher(password.NewHasher(hashCfg)),
		auth.WithTOTPChecker(totp.NewChecker(checkerCfg)),
	)

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return fmt.Errorf("failed to create cookie manager: %w", err)
	}

	checks := []httpserver.Check{{Name: "postgres", Probe: pg.Healthcheck(pool)}}
	moduleOpts := []account.Option{
		account.WithLogger(log),
		account.WithTOTPIssuer(totpCfg.Issuer),
	}

	if app.GitHubEnabled {
		var ghCfg oauth.GitHubConfig
		if err := config.Load(&ghCfg); err != nil {
			return err
		}

		var states oauth.StateStore
		switch app.OAuthStateStore {
		case "memory":
			states = oauth.NewMemoryStateStore(ghCfg.StateTTL)
		case "redis":
			client, err := redis.Connect(ctx, redisCfg)
			if err != nil {
				return err
			}
			defer client.Close()
			states = oauth.NewRedisStateStore(client, ghCfg.StateTTL)
			checks = append(checks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)})
		default:
			return fmt.Errorf("unknown OAUTH_STATE_STORE %q", app.OAuthStateStore)
		}

		linker := oauth.NewLinker(svc, oauth.NewGitHubExchanger(ghCfg), states, oauth.WithLogger(log))
		moduleOpts = append(moduleOpts, account.WithGitHub(linker))
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.New(ipCfg).Middleware)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, checks...))
	r.Mount("/", account.NewModule(svc, cookies, moduleOpts...).Router())

	return httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

func newLogger(app appConfig) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(app.Env, "credkitd"),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	}
	if app.LogLevel != "" {
		level, err := logger.ParseLevel(app.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, logger.WithLevel(level))
	}
	switch strings.ToLower(app.LogFormat) {
	case "":
	case string(logger.FormatJSON), string(logger.FormatText):
		opts = append(opts, logger.WithFormat(logger.Format(strings.ToLower(app.LogFormat))))
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", app.LogFormat)
	}
	return logger.New(opts...), nil
}
