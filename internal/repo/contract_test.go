package repo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
	"github.com/pkordes/daily-tasks/backend/internal/repo"
)

// todoFixture returns a fully-populated todo. CreatedAt has microsecond
// precision so it survives a Postgres round-trip unchanged.
func todoFixture(id string, created time.Time) domain.Todo {
	due := time.Date(2025, 7, 4, 18, 0, 0, 0, time.UTC)
	return domain.Todo{
		ID:        id,
		Text:      "Buy milk " + id,
		DueDate:   &due,
		Tags:      []string{"groceries", "Urgent", "groceries"},
		CreatedAt: created,
	}
}

var baseTime = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// runTodoRepoContract exercises the behaviour every TodoRepo implementation
// must share. newRepo must return an empty store.
func runTodoRepoContract(t *testing.T, newRepo func(t *testing.T) repo.TodoRepo) {
	t.Run("Insert_GetByID_RoundTrip", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		in := todoFixture("a", baseTime)

		_, err := r.Insert(ctx, in)
		require.NoError(t, err)

		got, err := r.GetByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, in.ID, got.ID)
		assert.Equal(t, in.Text, got.Text)
		assert.False(t, got.Completed)
		require.NotNil(t, got.DueDate)
		assert.True(t, in.DueDate.Equal(*got.DueDate))
		assert.Equal(t, in.Tags, got.Tags, "order, casing and duplicates preserved")
		assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Insert_NilTagsStoredEmpty", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		in := todoFixture("a", baseTime)
		in.Tags = nil
		in.DueDate = nil

		got, err := r.Insert(ctx, in)

		require.NoError(t, err)
		assert.NotNil(t, got.Tags)
		assert.Empty(t, got.Tags)
		assert.Nil(t, got.DueDate)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.GetByID(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete_ThenNotFound", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		_, err := r.Insert(ctx, todoFixture("a", baseTime))
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, "a"))

		_, err = r.GetByID(ctx, "a")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, r.Delete(ctx, "a"), domain.ErrNotFound, "second delete must fail")
	})

	t.Run("List_AllRecords", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		for i := range 3 {
			_, err := r.Insert(ctx, todoFixture(fmt.Sprintf("t%d", i), baseTime.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
		}

		got, err := r.List(ctx)

		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("List_EmptyIsNonNil", func(t *testing.T) {
		r := newRepo(t)

		got, err := r.List(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Mutate_PersistsResult", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		_, err := r.Insert(ctx, todoFixture("a", baseTime))
		require.NoError(t, err)

		got, err := r.Mutate(ctx, "a", func(cur domain.Todo) (domain.Todo, error) {
			cur.Completed = true
			cur.Text = "changed"
			cur.DueDate = nil
			cur.Tags = []string{"x"}
			return cur, nil
		})

		require.NoError(t, err)
		assert.True(t, got.Completed)
		stored, err := r.GetByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "changed", stored.Text)
		assert.True(t, stored.Completed)
		assert.Nil(t, stored.DueDate)
		assert.Equal(t, []string{"x"}, stored.Tags)
		assert.True(t, baseTime.Equal(stored.CreatedAt), "created_at never changes")
	})

	t.Run("Mutate_NotFoundBeforeFn", func(t *testing.T) {
		r := newRepo(t)
		called := false

		_, err := r.Mutate(context.Background(), "missing", func(cur domain.Todo) (domain.Todo, error) {
			called = true
			return cur, nil
		})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("Mutate_FnErrorLeavesRecordUntouched", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		in := todoFixture("a", baseTime)
		_, err := r.Insert(ctx, in)
		require.NoError(t, err)
		boom := errors.New("boom")

		_, err = r.Mutate(ctx, "a", func(cur domain.Todo) (domain.Todo, error) {
			cur.Text = "should not persist"
			return cur, boom
		})

		assert.ErrorIs(t, err, boom)
		stored, err := r.GetByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, in.Text, stored.Text)
	})

	t.Run("Count", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		_, err = r.Insert(ctx, todoFixture("a", baseTime))
		require.NoError(t, err)
		_, err = r.Insert(ctx, todoFixture("b", baseTime))
		require.NoError(t, err)

		n, err = r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
