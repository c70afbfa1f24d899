package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ferguskeenan/prediction-league/internal/config"
	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/account/anubis"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/feed"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/notify"
	cacherepo "github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/cache"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/memory"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/ferguskeenan/prediction-league/internal/interfaces/httpapi"
	basecache "github.com/ferguskeenan/prediction-league/internal/platform/cache"
	idgen "github.com/ferguskeenan/prediction-league/internal/platform/id"
	"github.com/ferguskeenan/prediction-league/internal/platform/logging"
	"github.com/ferguskeenan/prediction-league/internal/platform/resilience"
	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

// App wires storage, external clients and the HTTP surface together.
type App struct {
	Server *http.Server

	cfg     config.Config
	logger  *logging.Logger
	db      *sqlx.DB
	syncSvc *usecase.ResultsSyncService
}

type repositories struct {
	fixtures    cacherepo.FixtureStore
	picks       pick.Repository
	results     result.Repository
	submissions submission.Repository
	leagues     league.Repository
	users       user.Repository
	snapshots   scoring.Source
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	var db *sqlx.DB
	var repos repositories
	switch cfg.StorageMode {
	case config.StorageModeMemory:
		repos = memoryRepositories()
		logger.Info("storage ready", "mode", config.StorageModeMemory)
	default:
		conn, err := openDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = conn
		repos = postgresRepositories(conn)
		logger.Info("storage ready", "mode", config.StorageModePostgres, "db", dbNameFromURL(cfg.DBURL))

		if cfg.AppEnv == config.EnvDev {
			seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := postgres.BootstrapSeed(seedCtx, conn)
			cancel()
			if err != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
	}

	var cacheStore *basecache.Store
	if cfg.CacheEnabled {
		cacheStore = basecache.NewStore(cfg.CacheTTL)
		repos = wrapWithCache(repos, cacheStore)
	}

	var resultsFeed usecase.ResultsFeed
	if cfg.ResultsFeedEnabled {
		resultsFeed = feed.NewClient(feed.ClientConfig{
			BaseURL:  cfg.ResultsFeedBaseURL,
			APIToken: cfg.ResultsFeedToken,
			Timeout:  cfg.ResultsFeedTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ResultsFeedCircuitEnabled,
				FailureThreshold: cfg.ResultsFeedCircuitFailures,
				OpenTimeout:      cfg.ResultsFeedCircuitOpenFor,
				HalfOpenMaxReq:   cfg.ResultsFeedCircuitHalfOpen,
			},
		}, slogger)
	}

	notifier := notify.NewWebhookPublisher(notify.PublisherConfig{
		WebhookURL: cfg.SubmissionWebhookURL,
		AuthToken:  cfg.SubmissionWebhookToken,
		Timeout:    cfg.SubmissionWebhookTimeout,
	}, slogger)

	predictionSvc := usecase.NewPredictionService(
		repos.fixtures,
		repos.picks,
		repos.results,
		repos.submissions,
		repos.leagues,
		notifier,
	)
	leagueSvc := usecase.NewLeagueService(repos.leagues, idgen.NewRandomGenerator())
	standingsSvc := usecase.NewStandingsService(repos.leagues, repos.users, repos.snapshots, cacheStore)
	rankingSvc := usecase.NewRankingService(repos.users, repos.snapshots, cacheStore)
	statsSvc := usecase.NewStatsService(rankingSvc)

	syncSvc := usecase.NewResultsSyncService(
		repos.fixtures,
		repos.results,
		repos.picks,
		resultsFeed,
		standingsSvc,
		rankingSvc,
	)
	syncSvc.SetSyncPolicy(cfg.ResultsSyncInterval, cfg.ResultsSyncWorkers)

	fixtureAdminSvc := usecase.NewFixtureAdminService(repos.fixtures, standingsSvc, rankingSvc)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		slogger,
	)
	verifier := anubis.NewCachingVerifier(anubisClient, cfg.AnubisTokenCacheTTL, cfg.AnubisTokenCacheMaxEntries)

	handler := httpapi.NewHandler(
		predictionSvc,
		leagueSvc,
		standingsSvc,
		rankingSvc,
		statsSvc,
		syncSvc,
		fixtureAdminSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:  server,
		cfg:     cfg,
		logger:  logger,
		db:      db,
		syncSvc: syncSvc,
	}, nil
}

// RunResultsSync pulls final results on a fixed cadence until ctx is done.
func (a *App) RunResultsSync(ctx context.Context) {
	if !a.cfg.ResultsFeedEnabled {
		a.logger.Info("results sync loop disabled", "reason", "RESULTS_FEED_ENABLED=false")
		return
	}

	interval := a.cfg.ResultsSyncInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("results sync loop started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := a.syncSvc.SyncAll(ctx)
			if err != nil {
				a.logger.ErrorContext(ctx, "results sync failed", "error", err)
				continue
			}
			if report.NewResults > 0 {
				a.logger.InfoContext(ctx, "results sync stored new results",
					"new_results", report.NewResults,
					"synced_rounds", report.SyncedRounds,
				)
			}
		}
	}
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func memoryRepositories() repositories {
	store := memory.NewSeededStore()
	return repositories{
		fixtures:    store.Fixtures(),
		picks:       store.Picks(),
		results:     store.Results(),
		submissions: store.Submissions(),
		leagues:     store.Leagues(),
		users:       store.Users(),
		snapshots:   memory.NewSnapshotSource(store),
	}
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		fixtures:    postgres.NewFixtureRepository(db),
		picks:       postgres.NewPickRepository(db),
		results:     postgres.NewResultRepository(db),
		submissions: postgres.NewSubmissionRepository(db),
		leagues:     postgres.NewLeagueRepository(db),
		users:       postgres.NewUserRepository(db),
		snapshots:   postgres.NewSnapshotSource(db),
	}
}

// wrapWithCache layers read caching over the repositories whose data is hot
// and changes rarely. Picks, results and submissions stay uncached so scoring
// always reads live state.
func wrapWithCache(repos repositories, store *basecache.Store) repositories {
	repos.fixtures = cacherepo.NewFixtureRepository(repos.fixtures, store)
	repos.users = cacherepo.NewUserRepository(repos.users, store)
	repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, store)
	return repos
}

func slogLevel(level logging.Level) slog.Level {
	switch {
	case level <= logging.LevelDebug:
		return slog.LevelDebug
	case level == logging.LevelInfo:
		return slog.LevelInfo
	case level == logging.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
