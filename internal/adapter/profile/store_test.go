package profile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-assistant/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSaveAndLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &domain.Profile{
		Name:     "Jane Doe",
		Headline: "Engineer",
		Skills:   []string{"Go", "SQL"},
		Experience: []domain.Experience{
			{Title: "Engineer", Company: "Acme", Duration: "2020 - Present"},
		},
	}

	saved, err := store.Save(ctx, "https://www.linkedin.com/in/jane", p)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "https://www.linkedin.com/in/jane", got.ProfileURL)
	assert.Equal(t, *p, got.Profile)
}

func TestStoreLatestReturnsNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "https://www.linkedin.com/in/old", &domain.Profile{Name: "Old"})
	require.NoError(t, err)
	_, err = store.Save(ctx, "https://www.linkedin.com/in/new", &domain.Profile{Name: "New"})
	require.NoError(t, err)

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Profile.Name)
}

func TestStoreLatestEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Latest(context.Background())
	assert.True(t, errors.Is(err, domain.ErrProfileNotFound), "err = %v", err)
}

func TestStoreCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "nested", "data", "profiles.db"))
	require.NoError(t, err)
	store.Close()
}
