package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"herbar/client/internal/api"
	"herbar/client/internal/blob"
	"herbar/client/internal/catalog"
	"herbar/client/internal/clip"
	"herbar/client/internal/config"
	"herbar/client/internal/faq"
	"herbar/client/internal/kv"
	"herbar/client/internal/search"
	"herbar/client/internal/store"
)

// env holds the backends selected by the configuration.
type env struct {
	client    *api.Client
	fetcher   catalog.Fetcher
	faq       faq.Loader
	kv        kv.Store
	clipboard catalog.ClipboardWriter

	db       *sql.DB
	postgres *store.PostgresStore
	meili    *search.Meili
	catalog  *search.Service
	faqStore *blob.FAQStore
}

func openEnv(ctx context.Context, cfg config.Config, logger *slog.Logger) (*env, error) {
	e := &env{clipboard: clip.Fallback{Primary: clip.System{}, Secondary: &clip.Memory{}}}
	if err := e.open(ctx, cfg, logger); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) open(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	client, err := api.NewClient(cfg.APIURL, api.Options{
		Timeout: cfg.FetchTimeout,
		Retries: cfg.FetchRetries,
		Backoff: cfg.FetchBackoff,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	e.client = client

	switch cfg.CatalogSource {
	case "postgres":
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		e.db = db
		if cfg.MigrationsDir != "" {
			err = store.ApplyMigrationsDir(ctx, e.db, cfg.MigrationsDir)
		} else {
			err = store.ApplyMigrations(ctx, e.db, store.Migrations())
		}
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		e.postgres = store.NewPostgresStore(e.db)
		e.fetcher = e.postgres
	case "meili":
		e.meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
		e.catalog = search.NewService(e.meili, e.client, logger)
		e.fetcher = e.catalog
	default:
		e.fetcher = e.client
	}

	switch cfg.KV {
	case "redis":
		redisStore, err := kv.NewRedisStore(cfg.RedisURL, 0)
		if err != nil {
			return err
		}
		e.kv = redisStore
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("sqlite dir: %w", err)
		}
		sqliteStore, err := kv.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		e.kv = sqliteStore
	default:
		e.kv = kv.NewMemoryStore()
	}

	switch cfg.FAQSource {
	case "blob":
		faqStore, err := blob.NewFAQStore(blob.Options{
			Endpoint:  cfg.BlobEndpoint,
			AccessKey: cfg.BlobAccessKey,
			SecretKey: cfg.BlobSecretKey,
			Bucket:    cfg.BlobBucket,
			Object:    cfg.BlobFAQObject,
			UseSSL:    cfg.BlobUseSSL,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		e.faqStore = faqStore
		e.faq = faqStore
	default:
		e.faq = e.client
	}
	return nil
}

func (e *env) Close() {
	if e.kv != nil {
		_ = e.kv.Close()
	}
	if e.meili != nil {
		e.meili.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
}
