package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

type postgresPortfolioStore struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

// NewPostgresPortfolioStore returns a portfolio.Store backed by one JSONB row.
// Merge-writes use the JSONB || operator, so top-level keys absent from the
// written value survive, matching the document-store merge contract.
func NewPostgresPortfolioStore(db *pgxpool.Pool, logger logger.Logger) portfolio.Store {
	return &postgresPortfolioStore{db: db, logger: logger}
}

func (s *postgresPortfolioStore) Get(ctx context.Context) ([]byte, int64, error) {
	query := `
		SELECT data, revision
		FROM portfolio_documents
		WHERE doc_key = $1
	`
	var raw []byte
	var revision int64

	err := s.db.QueryRow(ctx, query, portfolio.DocumentKey).Scan(&raw, &revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, portfolio.ErrNotFound
		}
		return nil, 0, apperror.NewInternal("failed to query portfolio document", err)
	}

	return raw, revision, nil
}

func (s *postgresPortfolioStore) SetMerge(ctx context.Context, data []byte, expectedRevision int64) (int64, error) {
	if expectedRevision == 0 {
		query := `
			INSERT INTO portfolio_documents (doc_key, data, revision, updated_at)
			VALUES ($1, $2, 1, NOW())
			ON CONFLICT (doc_key) DO NOTHING
			RETURNING revision
		`
		var revision int64
		err := s.db.QueryRow(ctx, query, portfolio.DocumentKey, data).Scan(&revision)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Someone created the document between our read and write.
				return 0, portfolio.ErrRevisionConflict
			}
			return 0, apperror.NewInternal("failed to create portfolio document", err)
		}
		return revision, nil
	}

	query := `
		UPDATE portfolio_documents
		SET data = data || $2, revision = revision + 1, updated_at = NOW()
		WHERE doc_key = $1 AND revision = $3
		RETURNING revision
	`
	var revision int64
	err := s.db.QueryRow(ctx, query, portfolio.DocumentKey, data, expectedRevision).Scan(&revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, portfolio.ErrRevisionConflict
		}
		return 0, apperror.NewInternal("failed to merge portfolio document", err)
	}

	return revision, nil
}
