// tokenbridge: token record store + RFC 8693 token exchange.
//
// Subcomandos:
//
//	serve    levanta el servicio HTTP (token endpoint, admin API, JWKS)
//	migrate  aplica las migraciones SQL embebidas
//	sweep    elimina registros vencidos una sola vez y termina
//	seed     carga policies y clients desde un archivo YAML
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/tokenbridge/internal/cache"
	memcache "github.com/dropDatabas3/tokenbridge/internal/cache/memory"
	rediscache "github.com/dropDatabas3/tokenbridge/internal/cache/redis"
	"github.com/dropDatabas3/tokenbridge/internal/config"
	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/exchange"
	adminctrl "github.com/dropDatabas3/tokenbridge/internal/http/controllers/admin"
	healthctrl "github.com/dropDatabas3/tokenbridge/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tokenbridge/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/tokenbridge/internal/http/middlewares"
	"github.com/dropDatabas3/tokenbridge/internal/http/router"
	adminsvc "github.com/dropDatabas3/tokenbridge/internal/http/services/admin"
	healthsvc "github.com/dropDatabas3/tokenbridge/internal/http/services/health"
	oauthsvc "github.com/dropDatabas3/tokenbridge/internal/http/services/oauth"
	"github.com/dropDatabas3/tokenbridge/internal/jwt"
	"github.com/dropDatabas3/tokenbridge/internal/metrics"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
	"github.com/dropDatabas3/tokenbridge/internal/oidc"
	"github.com/dropDatabas3/tokenbridge/internal/rate"
	"github.com/dropDatabas3/tokenbridge/internal/store"
	_ "github.com/dropDatabas3/tokenbridge/internal/store/memory"
	_ "github.com/dropDatabas3/tokenbridge/internal/store/pg"
	migrations "github.com/dropDatabas3/tokenbridge/migrations/postgres"
)

func main() {
	var (
		configPath string
		envFile    string
	)

	root := &cobra.Command{
		Use:           "tokenbridge",
		Short:         "Token record store + RFC 8693 token exchange",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "ruta a .env (si existe, se carga)")

	root.AddCommand(serveCmd(&configPath, &envFile))
	root.AddCommand(migrateCmd(&configPath, &envFile))
	root.AddCommand(sweepCmd(&configPath, &envFile))
	root.AddCommand(seedCmd(&configPath, &envFile))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig carga .env (si existe), resuelve la ruta del YAML y valida.
func loadConfig(configPath, envFile string) (*config.Config, error) {
	if envFile != "" && fileExists(envFile) {
		_ = godotenv.Load(envFile)
	}

	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if fileExists("configs/config.yaml") {
			path = "configs/config.yaml"
		} else {
			path = "configs/config.example.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// ─── serve ───

func serveCmd(configPath, envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servicio HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, *envFile)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       envOr("LOG_LEVEL", "info"),
		ServiceName: "tokenbridge",
		Version:     os.Getenv("SERVICE_VERSION"),
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Store ───
	conn, err := store.Open(ctx, cfg.Storage.Driver, store.AdapterConfig{
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("store open: %w", err)
	}
	defer func() { _ = conn.Close() }()
	log.Info("store connected", logger.String("driver", conn.Name()))

	if cfg.Flags.Migrate && cfg.Storage.Driver == "postgres" {
		if err := runMigrations(ctx, cfg.Storage.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	// ─── Cache + redis (policy cache y rate limiting comparten cliente) ───
	var (
		policyCache cache.Cache
		rdbClient   *rdb.Client
		cacheCheck  func(context.Context) error
	)
	if cfg.Cache.Kind == "redis" || (cfg.Rate.Enabled && cfg.Cache.Redis.Addr != "") {
		rdbClient = rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
		defer func() { _ = rdbClient.Close() }()
		cacheCheck = func(ctx context.Context) error { return rdbClient.Ping(ctx).Err() }
	}
	switch cfg.Cache.Kind {
	case "redis":
		policyCache = rediscache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
	default:
		ttl, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
		policyCache = memcache.New(ttl)
	}

	// ─── Runtime OIDC + backend de referencia ───
	keys, err := jwt.NewEd25519(cfg.JWT.KID)
	if err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	adapters := oidc.NewAdapterFactory(conn.Records(), logger.Named("oidc"))
	issuer := jwt.NewIssuer(cfg.JWT.Issuer, keys, adapters)
	issuer.AccessTTL = cfg.AccessTTL()
	reader := jwt.NewReader(cfg.JWT.Issuer, keys, adapters)

	provider, err := oidc.Init(oidc.Options{
		Records: conn.Records(),
		Reader:  reader,
		Issuer:  issuer,
	})
	if err != nil {
		return fmt.Errorf("oidc provider: %w", err)
	}

	// ─── Grant de token exchange ───
	matcher := exchange.NewMatcher(conn.Policies(), policyCache, cfg.PolicyCacheTTL())
	provider.RegisterGrant(exchange.NewHandler(exchange.HandlerDeps{
		Reader:  provider.Reader(),
		Issuer:  provider.Issuer(),
		Matcher: matcher,
		Events:  conn.Events(),
	}))

	// ─── Métricas ───
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// ─── Rate limiting del token endpoint ───
	var tokenLimiter mw.RateLimiter
	if cfg.Rate.Enabled {
		if rdbClient == nil {
			log.Warn("rate limiting enabled but no redis addr configured; disabled")
		} else {
			window, _ := time.ParseDuration(cfg.Rate.Token.Window)
			tokenLimiter = rate.HTTPAdapter{Limiter: rate.NewRedisLimiter(
				rdbClient, cfg.Cache.Redis.Prefix+"rate:token",
				cfg.Rate.Token.Limit, window,
			)}
		}
	}

	// ─── Controllers ───
	tokenCtrl := oauthctrl.NewTokenController(oauthsvc.NewTokenService(provider, conn.Clients()))
	adminCtrls := adminctrl.NewControllers(adminctrl.Deps{
		Policies: adminsvc.NewPolicyService(conn.Policies(), matcher),
		Clients:  adminsvc.NewClientService(conn.Clients()),
		Events:   adminsvc.NewEventService(conn.Events()),
	})
	healthCtrl := healthctrl.NewHealthController(healthsvc.NewHealthService(healthsvc.Deps{
		DBCheck:    conn.Ping,
		CacheCheck: cacheCheck,
	}))

	mux := router.New(router.Deps{
		Token:              tokenCtrl,
		Admin:              adminCtrls,
		Health:             healthCtrl,
		JWKS:               oauthctrl.JWKSHandler(issuer.JWKSJSON()),
		AdminToken:         cfg.Server.AdminToken,
		TokenLimiter:       tokenLimiter,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MetricsRegistry:    reg,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Sweep.Enabled {
		g.Go(func() error {
			return sweepLoop(gctx, conn, cfg.SweepInterval())
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sweepLoop elimina registros vencidos cada interval, además del reaping
// perezoso en lecturas.
func sweepLoop(ctx context.Context, conn store.AdapterConnection, interval time.Duration) error {
	log := logger.Named("sweep")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := conn.Records().DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Warn("sweep failed", logger.Err(err))
				continue
			}
			if n > 0 {
				metrics.SweepDeleted.Add(float64(n))
				log.Info("expired records deleted", logger.Count(n))
			}
		}
	}
}

// ─── migrate ───

func migrateCmd(configPath, envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL embebidas (solo postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, *envFile)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate: storage.driver debe ser postgres (es %q)", cfg.Storage.Driver)
			}
			return runMigrations(cmd.Context(), cfg.Storage.DSN)
		},
	}
}

func runMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	res, err := migrations.Run(ctx, pool)
	if err != nil {
		return err
	}
	fmt.Printf("migrations: applied=%d skipped=%d (%s)\n",
		len(res.Applied), len(res.Skipped), res.Duration.Truncate(time.Millisecond))
	return nil
}

// ─── sweep ───

func sweepCmd(configPath, envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Elimina registros vencidos una sola vez",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, *envFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			conn, err := store.Open(ctx, cfg.Storage.Driver, store.AdapterConfig{
				DSN:          cfg.Storage.DSN,
				MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
				MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
			})
			if err != nil {
				return fmt.Errorf("store open: %w", err)
			}
			defer func() { _ = conn.Close() }()

			n, err := conn.Records().DeleteExpired(ctx, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("sweep: %d expired record(s) deleted\n", n)
			return nil
		},
	}
}

// ─── seed ───

// seedFile es el formato YAML aceptado por `tokenbridge seed`.
type seedFile struct {
	Clients []struct {
		ClientID string `yaml:"client_id"`
		Name     string `yaml:"name"`
		Secret   string `yaml:"secret"`
	} `yaml:"clients"`
	Policies []struct {
		ClientID           string   `yaml:"client_id"`
		Priority           int      `yaml:"priority"`
		Subject            string   `yaml:"subject"`
		SubjectTokenTypes  []string `yaml:"subject_token_types"`
		Audiences          []string `yaml:"audiences"`
		Scopes             []string `yaml:"scopes"`
		ActorTokenRequired bool     `yaml:"actor_token_required"`
		Enabled            *bool    `yaml:"enabled"`
	} `yaml:"policies"`
}

func seedCmd(configPath, envFile *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga clients y policies desde un archivo YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, *envFile)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("seed file: %w", err)
			}
			var sf seedFile
			if err := yaml.Unmarshal(raw, &sf); err != nil {
				return fmt.Errorf("seed yaml: %w", err)
			}

			ctx := cmd.Context()
			conn, err := store.Open(ctx, cfg.Storage.Driver, store.AdapterConfig{
				DSN:          cfg.Storage.DSN,
				MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
				MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
			})
			if err != nil {
				return fmt.Errorf("store open: %w", err)
			}
			defer func() { _ = conn.Close() }()

			// Los services aplican la misma validación que el admin API.
			ttl, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
			matcher := exchange.NewMatcher(conn.Policies(), memcache.New(ttl), cfg.PolicyCacheTTL())
			policies := adminsvc.NewPolicyService(conn.Policies(), matcher)
			clients := adminsvc.NewClientService(conn.Clients())

			var created, skipped int
			for _, c := range sf.Clients {
				_, generated, err := clients.Create(ctx, c.ClientID, c.Name, c.Secret)
				if err != nil {
					if repository.IsConflict(err) {
						skipped++
						continue
					}
					return fmt.Errorf("client %q: %w", c.ClientID, err)
				}
				if generated != "" {
					fmt.Printf("client %s: generated secret %s\n", c.ClientID, generated)
				}
				created++
			}
			for _, p := range sf.Policies {
				enabled := true
				if p.Enabled != nil {
					enabled = *p.Enabled
				}
				if _, err := policies.Create(ctx, repository.ExchangePolicyInput{
					ClientID:           p.ClientID,
					Priority:           p.Priority,
					Subject:            p.Subject,
					SubjectTokenTypes:  p.SubjectTokenTypes,
					Audiences:          p.Audiences,
					Scopes:             p.Scopes,
					ActorTokenRequired: p.ActorTokenRequired,
					Enabled:            enabled,
				}); err != nil {
					return fmt.Errorf("policy for %q: %w", p.ClientID, err)
				}
				created++
			}
			fmt.Printf("seed: %d created, %d skipped\n", created, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "seed.yaml", "archivo YAML con clients y policies")
	return cmd
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
