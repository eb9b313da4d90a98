package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/oncallkit/notifydesk"
	"github.com/oncallkit/notifydesk/config"
	"github.com/oncallkit/notifydesk/handlers"
	"github.com/oncallkit/notifydesk/middlewares"
	"github.com/oncallkit/notifydesk/migrations"
	"github.com/oncallkit/notifydesk/pkg/cache"
	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/db"
	"github.com/oncallkit/notifydesk/pkg/dialog"
	"github.com/oncallkit/notifydesk/pkg/gql"
	"github.com/oncallkit/notifydesk/pkg/job"
	"github.com/oncallkit/notifydesk/pkg/logger"
	"github.com/oncallkit/notifydesk/pkg/mailer"
	"github.com/oncallkit/notifydesk/pkg/mailer/resend"
	"github.com/oncallkit/notifydesk/pkg/query"
	"github.com/oncallkit/notifydesk/pkg/redis"
	"github.com/oncallkit/notifydesk/pkg/verification"
	"github.com/oncallkit/notifydesk/repository"
	"github.com/oncallkit/notifydesk/views"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

// demoUser is seeded into in-memory storage.
var demoUser = contactmethod.User{ID: "demo", Name: "Demo User", Email: "demo@notifydesk.local"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Log, middlewares.RequestIDExtractor(), handlers.UserIDExtractor()).
		With(slog.String("version", version), slog.String("commit", commit))

	err = run(context.Background(), cfg, log)
	if err != nil {
		log.Error("application error", slog.String("error", err.Error()))
	}
	sentry.Flush(2 * time.Second)
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var (
		appOpts  []notifydesk.Option
		health   []notifydesk.HealthOption
		shutdown []func(context.Context) error
		svc      *contactmethod.Service
	)

	sender := newSender(cfg, log)

	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := db.Connect(ctx, *cfg.Database)
		if err != nil {
			return err
		}
		shutdown = append(shutdown, db.Shutdown(pool))
		health = append(health, notifydesk.WithReadinessCheck("postgres", db.Healthcheck(pool)))

		if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, log); err != nil {
			return err
		}
		if err := job.Migrate(ctx, pool, log); err != nil {
			return err
		}

		// Tasks only read and write codes, so they use a repository without
		// the enqueue hook.
		codeStore := repository.New(pool)
		jobs, err := job.NewManager(pool,
			job.WithTask[verification.Payload](verification.NewSendTask(codeStore, sender, log)),
			job.WithScheduledTask(verification.NewExpireTask(codeStore, log)),
			job.WithLogger(log),
		)
		if err != nil {
			return err
		}

		repo := repository.New(pool, repository.WithAfterCreate(verification.AfterCreate(jobs)))
		svc = contactmethod.NewService(repo,
			contactmethod.WithResender(verification.Queue{Enqueuer: jobs}),
			contactmethod.WithLogger(log),
		)
		if cfg.Jobs {
			appOpts = append(appOpts, notifydesk.WithJobs(jobs))
			health = append(health, notifydesk.WithReadinessCheck("jobs", jobs.Healthcheck()))
		}

	case config.StorageMemory:
		repo := contactmethod.NewMemoryRepository(demoUser)
		svc = contactmethod.NewService(repo,
			contactmethod.WithVerifier(verification.Inline{Task: verification.NewSendTask(repo, sender, log)}),
			contactmethod.WithLogger(log),
		)
		log.Info("using in-memory storage", slog.String("profile", views.UserURL(demoUser.ID)))
	}

	queryStore, dialogs, err := newCaches(ctx, cfg, log, &health, &shutdown)
	if err != nil {
		return err
	}

	var mutator dialog.Mutator
	if cfg.APIURL != "" {
		mutator = contactmethod.RemoteMutator{Client: gql.NewClient(cfg.APIURL)}
	}

	appOpts = append(appOpts,
		notifydesk.WithLogger(log),
		notifydesk.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		notifydesk.WithStaticFiles("/static/", views.Static(), "static"),
		notifydesk.WithHandlers(
			handlers.NewContactMethods(handlers.Config{
				Service:   svc,
				Mutator:   mutator,
				Queries:   query.New(queryStore, query.WithTTL(cfg.CacheTTL)),
				Dialogs:   dialogs,
				DialogTTL: cfg.DialogTTL,
				Version:   version,
				Logger:    log,
			}),
			handlers.NewGraphQL(svc, cfg.APITimeout),
		),
		notifydesk.WithErrorHandler(handlers.ErrorHandler(version)),
		notifydesk.WithNotFoundHandler(handlers.NotFound(version)),
		notifydesk.WithHealthChecks(health...),
	)

	runOpts := []notifydesk.RunOption{
		notifydesk.Logger(log),
		notifydesk.ShutdownTimeout(cfg.ShutdownTimeout),
		notifydesk.WithContext(ctx),
	}
	for _, fn := range shutdown {
		runOpts = append(runOpts, notifydesk.ShutdownHook(fn))
	}

	return notifydesk.New(appOpts...).Run(cfg.Address, runOpts...)
}

// newSender emails codes through Resend when it is configured. Every other
// channel, and email without Resend, only logs the code.
func newSender(cfg config.Config, log *slog.Logger) verification.Sender {
	fallback := verification.LogSender{Log: log}
	if !cfg.Resend.Enabled() {
		return fallback
	}

	m := mailer.New(resend.New(cfg.Resend), mailer.NewRenderer(verification.Templates(), "layouts"), cfg.Mailer)
	return verification.ByType{
		Senders: map[contactmethod.Type]verification.Sender{
			contactmethod.TypeEmail: verification.MailSender{Mailer: m},
		},
		Default: fallback,
	}
}

// newCaches backs query results with Redis when REDIS_URL is set. Open dialogs
// hold live executors and always stay in process memory.
func newCaches(
	ctx context.Context,
	cfg config.Config,
	log *slog.Logger,
	health *[]notifydesk.HealthOption,
	shutdown *[]func(context.Context) error,
) (cache.Cache[[]byte], cache.Cache[*dialog.CreateDialog], error) {
	dialogs := cache.NewMemory[*dialog.CreateDialog](cache.WithDefaultTTL(cfg.DialogTTL))
	*shutdown = append(*shutdown, func(context.Context) error { return dialogs.Close() })

	if !cfg.Redis.Enabled() {
		store := cache.NewMemory[[]byte](cache.WithDefaultTTL(cfg.CacheTTL))
		*shutdown = append(*shutdown, func(context.Context) error { return store.Close() })
		return store, dialogs, nil
	}

	client, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	*health = append(*health, notifydesk.WithReadinessCheck("redis", redis.Healthcheck(client)))
	*shutdown = append(*shutdown, redis.Shutdown(client))

	store, err := cache.NewRedis[[]byte](client, "notifydesk:query", cfg.CacheTTL, rawCodec{})
	if err != nil {
		return nil, nil, err
	}
	log.Info("query cache backed by redis")
	return store, dialogs, nil
}

// rawCodec stores query results as the JSON the registry already produced.
type rawCodec struct{}

func (rawCodec) Encode(v []byte) ([]byte, error) { return v, nil }
func (rawCodec) Decode(b []byte) ([]byte, error) { return b, nil }
