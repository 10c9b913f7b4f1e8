package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
	"github.com/omishoninjp-sys/gotoshopee/pkg/tx"
	"github.com/omishoninjp-sys/gotoshopee/pkg/utils"
)

// ErrRunNotFound возвращается, когда запуск с таким идентификатором не сохранен
var ErrRunNotFound = errors.New("sync run not found")

// executor - интерфейс, объединяющий pgxpool.Pool и pgx.Tx
type executor interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// SyncRunStorage хранит историю запусков синхронизации в PostgreSQL.
// Реализует services.SyncRunStorePort и interfaces.StoragePort
type SyncRunStorage struct {
	pool   *pgxpool.Pool
	txm    tx.TxManager
	logger interfaces.LoggerPort
}

// NewSyncRunStorage создает хранилище истории запусков
func NewSyncRunStorage(pool *pgxpool.Pool, txm tx.TxManager, logger interfaces.LoggerPort) *SyncRunStorage {
	return &SyncRunStorage{pool: pool, txm: txm, logger: logger}
}

// BeginTx начинает новую транзакцию в пуле
func (s *SyncRunStorage) BeginTx(ctx context.Context) (interfaces.Transaction, error) {
	transaction, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return transaction, nil
}

// Close закрывает пул соединений
func (s *SyncRunStorage) Close() error {
	s.pool.Close()
	return nil
}

// getExecutor возвращает транзакцию из контекста, если она там есть, иначе пул
func (s *SyncRunStorage) getExecutor(ctx context.Context) executor {
	if transaction, ok := tx.GetTxFromContext(ctx); ok {
		return transaction
	}
	return s.pool
}

// EnsureSchema создает таблицы истории, если их еще нет
func (s *SyncRunStorage) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS sync_runs (
			run_id           TEXT PRIMARY KEY,
			collection_id    BIGINT NOT NULL,
			collection_title TEXT NOT NULL DEFAULT '',
			success          BOOLEAN NOT NULL,
			error            TEXT NOT NULL DEFAULT '',
			total            INT NOT NULL,
			success_count    INT NOT NULL,
			failed_count     INT NOT NULL,
			steps            JSONB,
			started_at       TIMESTAMPTZ NOT NULL,
			finished_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sync_run_items (
			run_id         TEXT NOT NULL REFERENCES sync_runs(run_id) ON DELETE CASCADE,
			position       INT NOT NULL,
			source_id      BIGINT NOT NULL,
			source_title   TEXT NOT NULL DEFAULT '',
			success        BOOLEAN NOT NULL,
			destination_id BIGINT NOT NULL DEFAULT 0,
			error          TEXT NOT NULL DEFAULT '',
			debug          JSONB,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs (started_at DESC)`,
	}

	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("storage: ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun сохраняет запуск вместе с результатами по товарам в одной транзакции
func (s *SyncRunStorage) SaveRun(ctx context.Context, run *models.CollectionSyncSummary) error {
	return s.txm.Do(ctx, func(ctx context.Context) error {
		exec := s.getExecutor(ctx)

		steps, err := json.Marshal(run.Steps)
		if err != nil {
			return fmt.Errorf("storage: encode steps: %w", err)
		}

		_, err = exec.Exec(ctx, `
			INSERT INTO sync_runs (run_id, collection_id, collection_title, success, error,
			                       total, success_count, failed_count, steps, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			run.RunID, run.CollectionID, run.CollectionTitle, run.Success, run.Error,
			run.Summary.Total, run.Summary.Success, run.Summary.Failed, steps,
			run.StartedAt, run.FinishedAt)
		if err != nil {
			return fmt.Errorf("storage: insert run: %w", err)
		}

		for position, result := range run.Results {
			debug, err := json.Marshal(result.Debug)
			if err != nil {
				return fmt.Errorf("storage: encode debug trail: %w", err)
			}

			_, err = exec.Exec(ctx, `
				INSERT INTO sync_run_items (run_id, position, source_id, source_title,
				                            success, destination_id, error, debug)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				run.RunID, position, result.SourceID, result.SourceTitle,
				result.Success, result.DestinationID, result.Error, debug)
			if err != nil {
				return fmt.Errorf("storage: insert run item: %w", err)
			}
		}
		return nil
	})
}

// GetRun возвращает запуск с результатами по товарам
func (s *SyncRunStorage) GetRun(ctx context.Context, runID string) (*models.CollectionSyncSummary, error) {
	exec := s.getExecutor(ctx)

	run := &models.CollectionSyncSummary{Results: []models.SyncResult{}}
	var steps []byte

	err := exec.QueryRow(ctx, `
		SELECT run_id, collection_id, collection_title, success, error,
		       total, success_count, failed_count, steps, started_at, finished_at
		FROM sync_runs WHERE run_id = $1`, runID).Scan(
		&run.RunID, &run.CollectionID, &run.CollectionTitle, &run.Success, &run.Error,
		&run.Summary.Total, &run.Summary.Success, &run.Summary.Failed, &steps,
		&run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("storage: select run: %w", err)
	}

	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &run.Steps); err != nil {
			return nil, fmt.Errorf("storage: decode steps: %w", err)
		}
	}

	rows, err := exec.Query(ctx, `
		SELECT source_id, source_title, success, destination_id, error, debug
		FROM sync_run_items WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage: select run items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result models.SyncResult
		var debug []byte
		if err := rows.Scan(&result.SourceID, &result.SourceTitle, &result.Success,
			&result.DestinationID, &result.Error, &debug); err != nil {
			return nil, fmt.Errorf("storage: scan run item: %w", err)
		}
		if len(debug) > 0 {
			if err := json.Unmarshal(debug, &result.Debug); err != nil {
				return nil, fmt.Errorf("storage: decode debug trail: %w", err)
			}
		}
		run.Results = append(run.Results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate run items: %w", err)
	}

	return run, nil
}

// ListRuns возвращает страницу истории запусков, новые первыми.
// Результаты по товарам в список не включаются, для них есть GetRun
func (s *SyncRunStorage) ListRuns(ctx context.Context, pagination *utils.Pagination) ([]models.CollectionSyncSummary, error) {
	exec := s.getExecutor(ctx)

	var total int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM sync_runs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("storage: count runs: %w", err)
	}
	pagination.SetTotal(total)

	rows, err := exec.Query(ctx, `
		SELECT run_id, collection_id, collection_title, success, error,
		       total, success_count, failed_count, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2`, pagination.GetLimit(), pagination.GetOffset())
	if err != nil {
		return nil, fmt.Errorf("storage: select runs: %w", err)
	}
	defer rows.Close()

	runs := make([]models.CollectionSyncSummary, 0, pagination.GetLimit())
	for rows.Next() {
		run := models.CollectionSyncSummary{Results: []models.SyncResult{}}
		if err := rows.Scan(&run.RunID, &run.CollectionID, &run.CollectionTitle,
			&run.Success, &run.Error, &run.Summary.Total, &run.Summary.Success,
			&run.Summary.Failed, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("storage: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate runs: %w", err)
	}

	return runs, nil
}
