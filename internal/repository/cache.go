package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

// ModelCacheRepository persists raw model responses. It satisfies llm.Cache.
type ModelCacheRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, model, response string) error
}

type modelCacheRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewModelCacheRepository(db *DB, log *slog.Logger) ModelCacheRepository {
	if log == nil {
		log = slog.Default()
	}
	return &modelCacheRepo{db: db, log: log, now: time.Now}
}

func (r *modelCacheRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var response string
	err := r.db.SQL.QueryRowContext(ctx,
		r.db.rebind(`SELECT response FROM model_cache WHERE cache_key = ?`), key,
	).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.log.Error("model_cache get failed", "err", err)
		return "", false, err
	}
	return response, true, nil
}

// Put stores a response once; later writes for the same key are ignored.
func (r *modelCacheRepo) Put(ctx context.Context, key, model, response string) error {
	res, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`INSERT INTO model_cache (cache_key, model, response, created_at)
			VALUES (?, ?, ?, ?) ON CONFLICT (cache_key) DO NOTHING`),
		key, model, response, formatTime(r.now()),
	)
	if err != nil {
		r.log.Error("model_cache put failed", "model", model, "err", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		r.log.Debug("model_cache stored", "model", model, "bytes", len(response))
	}
	return nil
}
