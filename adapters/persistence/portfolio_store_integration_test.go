package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/anhtran/folio-api/internal/domain/inbox"
	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/logger"
)

type PortfolioStoreIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger
	store       portfolio.Store
	messageRepo inbox.Repository
}

func (s *PortfolioStoreIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.testLogger = logger.NewNop()
	s.store = NewPostgresPortfolioStore(s.dbPool, s.testLogger)
	s.messageRepo = NewPostgresMessageRepo(s.dbPool, s.testLogger)
}

func (s *PortfolioStoreIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *PortfolioStoreIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.dbPool.Exec(ctx, `DELETE FROM portfolio_documents`)
	s.Require().NoError(err)
	_, err = s.dbPool.Exec(ctx, `DELETE FROM messages`)
	s.Require().NoError(err)
}

func TestPortfolioStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(PortfolioStoreIntegrationTestSuite))
}

func (s *PortfolioStoreIntegrationTestSuite) Test_Get_MissingDocument() {
	_, _, err := s.store.Get(context.Background())

	s.ErrorIs(err, portfolio.ErrNotFound)
}

func (s *PortfolioStoreIntegrationTestSuite) Test_SetMerge_CreatesThenReads() {
	ctx := context.Background()

	revision, err := s.store.SetMerge(ctx, []byte(`{"skills": ["Go"]}`), 0)
	s.NoError(err)
	s.Equal(int64(1), revision)

	raw, readRevision, err := s.store.Get(ctx)
	s.NoError(err)
	s.Equal(revision, readRevision)

	var doc map[string]json.RawMessage
	s.NoError(json.Unmarshal(raw, &doc))
	s.JSONEq(`["Go"]`, string(doc["skills"]))
}

func (s *PortfolioStoreIntegrationTestSuite) Test_SetMerge_PreservesOtherTopLevelKeys() {
	ctx := context.Background()

	revision, err := s.store.SetMerge(ctx, []byte(`{"skills": ["Go"], "personalInfo": {"name": "Anh"}}`), 0)
	s.Require().NoError(err)

	revision, err = s.store.SetMerge(ctx, []byte(`{"skills": ["Go", "Rust"]}`), revision)
	s.NoError(err)
	s.Equal(int64(2), revision)

	raw, _, err := s.store.Get(ctx)
	s.Require().NoError(err)

	var doc map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(raw, &doc))
	s.JSONEq(`["Go", "Rust"]`, string(doc["skills"]))
	s.JSONEq(`{"name": "Anh"}`, string(doc["personalInfo"]))
}

func (s *PortfolioStoreIntegrationTestSuite) Test_SetMerge_StaleRevisionConflicts() {
	ctx := context.Background()

	revision, err := s.store.SetMerge(ctx, []byte(`{"skills": ["Go"]}`), 0)
	s.Require().NoError(err)

	_, err = s.store.SetMerge(ctx, []byte(`{"skills": ["Rust"]}`), revision)
	s.Require().NoError(err)

	// A writer still holding the pre-update revision must lose.
	_, err = s.store.SetMerge(ctx, []byte(`{"skills": ["Zig"]}`), revision)
	s.ErrorIs(err, portfolio.ErrRevisionConflict)
}

func (s *PortfolioStoreIntegrationTestSuite) Test_SetMerge_DoubleCreateConflicts() {
	ctx := context.Background()

	_, err := s.store.SetMerge(ctx, []byte(`{"skills": ["Go"]}`), 0)
	s.Require().NoError(err)

	_, err = s.store.SetMerge(ctx, []byte(`{"skills": ["Rust"]}`), 0)
	s.ErrorIs(err, portfolio.ErrRevisionConflict)
}

func (s *PortfolioStoreIntegrationTestSuite) Test_Messages_InsertListMarkRead() {
	ctx := context.Background()

	first := &inbox.Message{ID: uuid.New(), Name: "Linh", Email: "linh@example.com", Body: "first"}
	second := &inbox.Message{ID: uuid.New(), Name: "Minh", Email: "minh@example.com", Body: "second"}
	s.Require().NoError(s.messageRepo.Insert(ctx, first))
	s.Require().NoError(s.messageRepo.Insert(ctx, second))
	s.False(first.Timestamp.IsZero())

	messages, err := s.messageRepo.ListNewestFirst(ctx)
	s.Require().NoError(err)
	s.Require().Len(messages, 2)
	s.Equal(second.ID, messages[0].ID)
	s.Equal(first.ID, messages[1].ID)
	s.False(messages[0].Read)

	s.NoError(s.messageRepo.MarkRead(ctx, second.ID))
	s.NoError(s.messageRepo.MarkRead(ctx, second.ID))

	messages, err = s.messageRepo.ListNewestFirst(ctx)
	s.Require().NoError(err)
	s.True(messages[0].Read)

	s.ErrorIs(s.messageRepo.MarkRead(ctx, uuid.New()), inbox.ErrMessageNotFound)
}
