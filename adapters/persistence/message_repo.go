package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anhtran/folio-api/internal/domain/inbox"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

type postgresMessageRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresMessageRepo(db *pgxpool.Pool, logger logger.Logger) inbox.Repository {
	return &postgresMessageRepo{db: db, logger: logger}
}

var psqlMessage = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *postgresMessageRepo) Insert(ctx context.Context, m *inbox.Message) error {
	query := `
		INSERT INTO messages (id, name, email, body, created_at, read)
		VALUES ($1, $2, $3, $4, NOW(), false)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, m.ID, m.Name, m.Email, m.Body).Scan(&m.Timestamp)
	if err != nil {
		return apperror.NewInternal("failed to insert message", err)
	}
	m.Read = false
	return nil
}

func (r *postgresMessageRepo) ListNewestFirst(ctx context.Context) ([]*inbox.Message, error) {
	query, args, err := psqlMessage.
		Select("id", "name", "email", "body", "created_at", "read").
		From("messages").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build message list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query messages", err)
	}
	defer rows.Close()

	messages := make([]*inbox.Message, 0)
	for rows.Next() {
		m := &inbox.Message{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.Timestamp, &m.Read); err != nil {
			return nil, apperror.NewInternal("failed to scan message row", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating message rows", err)
	}
	return messages, nil
}

func (r *postgresMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE messages
		SET read = true
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inbox.ErrMessageNotFound
		}
		return apperror.NewInternal("failed to mark message read", err)
	}
	if tag.RowsAffected() == 0 {
		return inbox.ErrMessageNotFound
	}
	return nil
}
