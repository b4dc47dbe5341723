package server

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPostgresStore connects to RESUME_TEST_DATABASE_URL. The resume_entries
// table is emptied, so point it at a disposable database.
func setupPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("RESUME_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: RESUME_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := ConnectPostgres(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	_, err = store.pool.Exec(ctx, `DELETE FROM resume_entries`)
	require.NoError(t, err)

	t.Cleanup(store.Close)
	return store
}

func TestPostgresStore_Integration(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	list, err := store.List(ctx, types.KindExperience)
	require.NoError(t, err)
	assert.Empty(t, list)

	for i, title := range []string{"A", "B", "C"} {
		pos, err := store.Append(ctx, types.KindExperience, exp(title))
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}

	require.NoError(t, store.Replace(ctx, types.KindExperience, 2, exp("C2")))
	require.NoError(t, store.Delete(ctx, types.KindExperience, 0))

	list, err = store.List(ctx, types.KindExperience)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0][types.FieldTitle])
	assert.Equal(t, "C2", list[1][types.FieldTitle])

	got, err := store.Get(ctx, types.KindExperience, 1)
	require.NoError(t, err)
	assert.Equal(t, "C2", got[types.FieldTitle])

	var oor *ErrPositionOutOfRange
	err = store.Delete(ctx, types.KindExperience, 2)
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 2, oor.Length)

	pos, err := store.Append(ctx, types.KindExperience, exp("D"))
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestPostgresStore_HandlersIntegration(t *testing.T) {
	store := setupPostgresStore(t)
	s, err := New(Config{Store: store})
	require.NoError(t, err)

	w := do(t, s, "POST", "/resume/education", types.Record{types.FieldCourse: "BSc", types.FieldSchool: "MIT"})
	require.Equal(t, 201, w.Code, w.Body.String())

	w = do(t, s, "GET", "/resume/education", nil)
	list := decode[[]types.Record](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "MIT", list[0][types.FieldSchool])
}
