package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
	"github.com/pkordes/daily-tasks/backend/internal/repo"
	"github.com/pkordes/daily-tasks/backend/internal/service"
)

// mockTodoRepo is a hand-written test double for repo.TodoRepo.
// Each method is a function field; set only the ones your test needs.
type mockTodoRepo struct {
	insert  func(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	getByID func(ctx context.Context, id string) (domain.Todo, error)
	delete  func(ctx context.Context, id string) error
	list    func(ctx context.Context) ([]domain.Todo, error)
	mutate  func(ctx context.Context, id string, fn repo.MutateFunc) (domain.Todo, error)
	count   func(ctx context.Context) (int, error)
}

func (m *mockTodoRepo) Insert(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	return m.insert(ctx, todo)
}
func (m *mockTodoRepo) GetByID(ctx context.Context, id string) (domain.Todo, error) {
	return m.getByID(ctx, id)
}
func (m *mockTodoRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockTodoRepo) List(ctx context.Context) ([]domain.Todo, error) {
	return m.list(ctx)
}
func (m *mockTodoRepo) Mutate(ctx context.Context, id string, fn repo.MutateFunc) (domain.Todo, error) {
	return m.mutate(ctx, id, fn)
}
func (m *mockTodoRepo) Count(ctx context.Context) (int, error) {
	return m.count(ctx)
}

// compile-time check: mockTodoRepo must satisfy repo.TodoRepo.
var _ repo.TodoRepo = (*mockTodoRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// sequentialIDs returns an ID generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

var epoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// newMemService wires a TodoService to a fresh in-memory store with
// deterministic IDs and timestamps.
func newMemService(opts ...service.Option) *service.TodoService {
	base := []service.Option{
		service.WithIDGenerator(sequentialIDs()),
		service.WithClock(steppingClock(epoch)),
	}
	return service.NewTodoService(repo.NewMemoryTodoRepo(), append(base, opts...)...)
}

func mustCreate(t *testing.T, svc *service.TodoService, in domain.NewTodo) domain.Todo {
	t.Helper()
	got, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return got
}

func ids(todos []domain.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

// ---- Create ----------------------------------------------------------------

func TestTodoService_Create_Defaults(t *testing.T) {
	svc := newMemService()

	got, err := svc.Create(context.Background(), domain.NewTodo{Text: "Buy milk"})

	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.False(t, got.Completed)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
	assert.Nil(t, got.DueDate)
	assert.True(t, epoch.Equal(got.CreatedAt))
}

func TestTodoService_Create_KeepsTagsAsGiven(t *testing.T) {
	svc := newMemService()

	got, err := svc.Create(context.Background(), domain.NewTodo{Text: "x", Tags: []string{"Work", "work", "Work"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"Work", "work", "Work"}, got.Tags)
}

func TestTodoService_Create_InvalidText(t *testing.T) {
	inserted := false
	svc := service.NewTodoService(&mockTodoRepo{
		insert: func(_ context.Context, td domain.Todo) (domain.Todo, error) {
			inserted = true
			return td, nil
		},
	})

	for _, text := range []string{"", strings.Repeat("x", domain.TextMaxLen+1)} {
		_, err := svc.Create(context.Background(), domain.NewTodo{Text: text})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.False(t, inserted, "nothing may be stored when validation fails")
}

func TestTodoService_Create_UniqueDefaultIDs(t *testing.T) {
	svc := service.NewTodoService(repo.NewMemoryTodoRepo())
	seen := map[string]bool{}

	for range 200 {
		got, err := svc.Create(context.Background(), domain.NewTodo{Text: "x"})
		require.NoError(t, err)
		require.False(t, seen[got.ID], "duplicate id %s", got.ID)
		seen[got.ID] = true
	}
}

func TestTodoService_Create_RepoError(t *testing.T) {
	svc := service.NewTodoService(&mockTodoRepo{
		insert: func(_ context.Context, _ domain.Todo) (domain.Todo, error) {
			return domain.Todo{}, errors.New("db down")
		},
	})

	_, err := svc.Create(context.Background(), domain.NewTodo{Text: "x"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

// ---- List ------------------------------------------------------------------

func TestTodoService_List_NewestFirst(t *testing.T) {
	svc := newMemService()
	mustCreate(t, svc, domain.NewTodo{Text: "first"})
	mustCreate(t, svc, domain.NewTodo{Text: "second"})
	mustCreate(t, svc, domain.NewTodo{Text: "third"})

	got, err := svc.List(context.Background(), domain.ListQuery{})

	require.NoError(t, err)
	assert.Equal(t, []string{"id-3", "id-2", "id-1"}, ids(got))
}

func TestTodoService_List_InvalidDueBefore(t *testing.T) {
	svc := service.NewTodoService(&mockTodoRepo{
		list: func(_ context.Context) ([]domain.Todo, error) {
			t.Fatal("store must not be read when the query is invalid")
			return nil, nil
		},
	})

	_, err := svc.List(context.Background(), domain.ListQuery{DueBefore: strPtr("31/12/2025")})

	require.ErrorIs(t, err, domain.ErrValidation)
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "dueBefore", ve.Field)
}

func TestTodoService_List_TagsAND(t *testing.T) {
	svc := newMemService()
	both := mustCreate(t, svc, domain.NewTodo{Text: "a", Tags: []string{"work", "urgent"}})
	mustCreate(t, svc, domain.NewTodo{Text: "b", Tags: []string{"work"}})
	mustCreate(t, svc, domain.NewTodo{Text: "c", Tags: []string{"urgent"}})

	got, err := svc.List(context.Background(), domain.ListQuery{Tags: strPtr("work,urgent")})
	require.NoError(t, err)
	assert.Equal(t, []string{both.ID}, ids(got))

	spaced, err := svc.List(context.Background(), domain.ListQuery{Tags: strPtr(" work , urgent, ")})
	require.NoError(t, err)
	assert.Equal(t, ids(got), ids(spaced))
}

func TestTodoService_List_DueBefore(t *testing.T) {
	svc := newMemService()
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	noDue := mustCreate(t, svc, domain.NewTodo{Text: "no due date"})
	mustCreate(t, svc, domain.NewTodo{Text: "due tomorrow", DueDate: &tomorrow})

	got, err := svc.List(context.Background(), domain.ListQuery{DueBefore: strPtr("2025-06-01")})

	require.NoError(t, err)
	assert.Equal(t, []string{noDue.ID}, ids(got))
}

func TestTodoService_List_RepoError(t *testing.T) {
	svc := service.NewTodoService(&mockTodoRepo{
		list: func(_ context.Context) ([]domain.Todo, error) { return nil, errors.New("db down") },
	})

	_, err := svc.List(context.Background(), domain.ListQuery{})

	assert.Error(t, err)
}

// ---- Update ----------------------------------------------------------------

func TestTodoService_Update_PartialFields(t *testing.T) {
	svc := newMemService()
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	orig := mustCreate(t, svc, domain.NewTodo{Text: "Buy milk", DueDate: &due, Tags: []string{"groceries"}})

	got, err := svc.Update(context.Background(), orig.ID, domain.TodoPatch{Completed: domain.Set(boolPtr(true))})

	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Buy milk", got.Text)
	assert.Equal(t, []string{"groceries"}, got.Tags)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.True(t, orig.CreatedAt.Equal(got.CreatedAt))
}

func TestTodoService_Update_ExplicitNullClearsDueDate(t *testing.T) {
	svc := newMemService()
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	orig := mustCreate(t, svc, domain.NewTodo{Text: "x", DueDate: &due})

	got, err := svc.Update(context.Background(), orig.ID, domain.TodoPatch{DueDate: domain.Set[*string](nil)})

	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
}

func TestTodoService_Update_EmptyPatch(t *testing.T) {
	svc := newMemService()
	orig := mustCreate(t, svc, domain.NewTodo{Text: "x"})

	_, err := svc.Update(context.Background(), orig.ID, domain.TodoPatch{})

	require.ErrorIs(t, err, domain.ErrValidation)
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindEmptyUpdate, ve.Kind)
}

func TestTodoService_Update_NotFoundBeatsEmptyPatch(t *testing.T) {
	svc := newMemService()

	_, err := svc.Update(context.Background(), "missing", domain.TodoPatch{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestTodoService_Update_NotFoundBeatsBadDueDate(t *testing.T) {
	svc := newMemService()
	patch := domain.TodoPatch{DueDate: domain.Set(strPtr("garbage"))}

	_, err := svc.Update(context.Background(), "missing", patch)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestTodoService_Update_BadDueDate(t *testing.T) {
	svc := newMemService()
	orig := mustCreate(t, svc, domain.NewTodo{Text: "x"})

	_, err := svc.Update(context.Background(), orig.ID, domain.TodoPatch{DueDate: domain.Set(strPtr("garbage"))})

	require.ErrorIs(t, err, domain.ErrValidation)
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "dueDate", ve.Field)
}

func TestTodoService_Update_InvalidTextLeavesRecordUntouched(t *testing.T) {
	svc := newMemService()
	orig := mustCreate(t, svc, domain.NewTodo{Text: "keep me"})
	patch := domain.TodoPatch{
		Text:      domain.Set(strPtr("")),
		Completed: domain.Set(boolPtr(true)),
	}

	_, err := svc.Update(context.Background(), orig.ID, patch)
	require.ErrorIs(t, err, domain.ErrValidation)

	stored, err := svc.GetByID(context.Background(), orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stored.Text)
	assert.False(t, stored.Completed, "no partial mutation on failure")
}

// ---- Toggle ----------------------------------------------------------------

func TestTodoService_Toggle_IsItsOwnInverse(t *testing.T) {
	svc := newMemService()
	orig := mustCreate(t, svc, domain.NewTodo{Text: "x", Tags: []string{"a"}})
	ctx := context.Background()

	once, err := svc.Toggle(ctx, orig.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)

	twice, err := svc.Toggle(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig, twice)
}

func TestTodoService_Toggle_NotFound(t *testing.T) {
	svc := newMemService()

	_, err := svc.Toggle(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete ----------------------------------------------------------------

func TestTodoService_Delete_SecondTimeNotFound(t *testing.T) {
	svc := newMemService()
	orig := mustCreate(t, svc, domain.NewTodo{Text: "x"})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, orig.ID))
	assert.ErrorIs(t, svc.Delete(ctx, orig.ID), domain.ErrNotFound)
}

// ---- Count -----------------------------------------------------------------

func TestTodoService_Count(t *testing.T) {
	svc := newMemService()
	mustCreate(t, svc, domain.NewTodo{Text: "x"})
	mustCreate(t, svc, domain.NewTodo{Text: "y"})

	n, err := svc.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// ---- Scenario --------------------------------------------------------------

func TestTodoService_Lifecycle(t *testing.T) {
	svc := newMemService()
	ctx := context.Background()

	created := mustCreate(t, svc, domain.NewTodo{Text: "Buy milk"})
	assert.False(t, created.Completed)
	assert.Empty(t, created.Tags)
	assert.Nil(t, created.DueDate)

	updated, err := svc.Update(ctx, created.ID, domain.TodoPatch{Completed: domain.Set(boolPtr(true))})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Text)

	require.NoError(t, svc.Delete(ctx, created.ID))
	all, err := svc.List(ctx, domain.ListQuery{})
	require.NoError(t, err)
	assert.NotContains(t, ids(all), created.ID)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)
}
