//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/persistence"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("events"),
		postgres.WithUsername("events"),
		postgres.WithPassword("events"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cancel()
		panic(err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}
	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		panic(err)
	}
	if err := persistence.RunMigrations(ctx, testPool, zap.NewNop()); err != nil {
		panic(err)
	}
	cancel()

	code := m.Run()

	testPool.Close()
	_ = testcontainers.TerminateContainer(container)
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE users, events`)
	require.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	user := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: domain.RoleAdmin}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, domain.RoleAdmin, byEmail.Role)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	dup := &domain.User{Name: "Other", Email: "ada@example.com", PasswordHash: "x", Role: domain.RoleNormal}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	bad := &domain.User{Name: "Bad", Email: "bad@example.com", PasswordHash: "x", Role: domain.Role("root")}
	assert.Error(t, repo.Create(ctx, bad))
}

func TestEventRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewEventRepository(testPool)

	first := &domain.Event{Title: "Meetup", Description: "Go meetup", Date: "2025-05-01", Time: "18:30", ImageURL: "https://img/1.png"}
	require.NoError(t, repo.Create(ctx, first))
	second := &domain.Event{Title: "Conf", Description: "Conference", Date: "2025-06-01", Time: "09:00", ImageURL: "https://img/2.png"}
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx, EventFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	page, err := repo.List(ctx, EventFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	first.Title = "Meetup v2"
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meetup v2", got.Title)
	assert.Equal(t, "18:30", got.Time)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), ErrNotFound)
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := &domain.Event{ID: first.ID, Title: "x", Description: "x", Date: "2025-01-01", Time: "10:00", ImageURL: "x"}
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
}
