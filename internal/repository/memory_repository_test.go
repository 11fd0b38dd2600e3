package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwen-console/internal/model"
	"qwen-console/internal/repository"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and Get return independent copies", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		s := model.NewSession("s1", model.Connection{Model: "m"})
		require.NoError(t, repo.Create(ctx, s))

		got, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		got.History = append(got.History, model.Message{Role: model.RoleUser, Content: "x"})

		again, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, again.History)
		assert.Equal(t, uint64(1), again.Revision)
	})

	t.Run("Create rejects duplicate ids", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		require.NoError(t, repo.Create(ctx, model.NewSession("s1", model.Connection{})))

		err := repo.Create(ctx, model.NewSession("s1", model.Connection{}))

		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("Get unknown session", func(t *testing.T) {
		repo := repository.NewMemoryRepository()

		_, err := repo.Get(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Save advances the revision", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		require.NoError(t, repo.Create(ctx, model.NewSession("s1", model.Connection{})))
		s, err := repo.Get(ctx, "s1")
		require.NoError(t, err)

		s.ApplyExchange("q", "a", nil, nil)
		require.NoError(t, repo.Save(ctx, s))

		assert.Equal(t, uint64(2), s.Revision)
		stored, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, stored.History, 2)
	})

	t.Run("Saving a stale copy is a conflict", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		require.NoError(t, repo.Create(ctx, model.NewSession("s1", model.Connection{})))
		first, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		second, err := repo.Get(ctx, "s1")
		require.NoError(t, err)

		first.ApplyExchange("q1", "a1", nil, nil)
		require.NoError(t, repo.Save(ctx, first))
		second.ApplyExchange("q2", "a2", nil, nil)
		err = repo.Save(ctx, second)

		assert.ErrorIs(t, err, repository.ErrConflict)
		stored, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, stored.History, 2)
		assert.Equal(t, "q1", stored.History[0].Content)
	})

	t.Run("Save unknown session", func(t *testing.T) {
		repo := repository.NewMemoryRepository()

		err := repo.Save(ctx, model.NewSession("missing", model.Connection{}))

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("List orders by last update", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		older := model.NewSession("old", model.Connection{})
		older.UpdatedAt = time.Now().Add(-time.Hour)
		require.NoError(t, repo.Create(ctx, older))
		require.NoError(t, repo.Create(ctx, model.NewSession("new", model.Connection{})))

		sessions, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "new", sessions[0].ID)
		assert.Equal(t, "old", sessions[1].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		require.NoError(t, repo.Create(ctx, model.NewSession("s1", model.Connection{})))

		require.NoError(t, repo.Delete(ctx, "s1"))
		_, err := repo.Get(ctx, "s1")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "s1"), repository.ErrNotFound)
	})
}
