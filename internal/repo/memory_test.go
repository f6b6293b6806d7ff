package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
	"github.com/pkordes/daily-tasks/backend/internal/repo"
)

func TestMemoryTodoRepo(t *testing.T) {
	runTodoRepoContract(t, func(t *testing.T) repo.TodoRepo {
		return repo.NewMemoryTodoRepo()
	})
}

func TestMemoryTodoRepo_ListKeepsInsertionOrder(t *testing.T) {
	r := repo.NewMemoryTodoRepo()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_, err := r.Insert(ctx, todoFixture(id, baseTime))
		require.NoError(t, err)
	}
	require.NoError(t, r.Delete(ctx, "a"))

	got, err := r.List(ctx)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestMemoryTodoRepo_InsertDuplicateID(t *testing.T) {
	r := repo.NewMemoryTodoRepo()
	ctx := context.Background()
	_, err := r.Insert(ctx, todoFixture("a", baseTime))
	require.NoError(t, err)

	_, err = r.Insert(ctx, todoFixture("a", baseTime))

	assert.Error(t, err)
}

func TestMemoryTodoRepo_ReturnedValuesAreCopies(t *testing.T) {
	r := repo.NewMemoryTodoRepo()
	ctx := context.Background()
	_, err := r.Insert(ctx, todoFixture("a", baseTime))
	require.NoError(t, err)

	got, err := r.GetByID(ctx, "a")
	require.NoError(t, err)
	got.Tags[0] = "mutated"
	*got.DueDate = got.DueDate.AddDate(1, 0, 0)

	again, err := r.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "groceries", again.Tags[0])
	assert.Equal(t, 2025, again.DueDate.Year())
}

// TestMemoryTodoRepo_MutateSerializes races many toggles on one record; a lost
// update would leave the flag out of step with the number of toggles.
func TestMemoryTodoRepo_MutateSerializes(t *testing.T) {
	r := repo.NewMemoryTodoRepo()
	ctx := context.Background()
	_, err := r.Insert(ctx, todoFixture("a", baseTime))
	require.NoError(t, err)

	const n = 101
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Mutate(ctx, "a", func(cur domain.Todo) (domain.Todo, error) {
				cur.Completed = !cur.Completed
				return cur, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Completed, "odd number of toggles must end completed")
}
