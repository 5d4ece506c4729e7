package pgstore

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/Dias221467/Beer_Rating/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `users/a\_b/`, escapeLike("users/a_b/"))
	assert.Equal(t, `50\%\\off`, escapeLike(`50%\off`))
}

func TestChunkPaths(t *testing.T) {
	assert.Nil(t, chunkPaths(nil))
	assert.Equal(t, []string{"a\nb"}, chunkPaths([]string{"a", "b"}))

	long := strings.Repeat("x", maxPayload-10)
	chunks := chunkPaths([]string{long, "users/a/friends/b", "users/b/friends/a"})
	require.Len(t, chunks, 2)
	assert.Equal(t, long, chunks[0])
	assert.Equal(t, "users/a/friends/b\nusers/b/friends/a", chunks[1])
}

// TestBackend runs against the database named by POSTGRES_TEST_DSN.
func TestBackend(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	storetest.Run(t, func(t *testing.T) store.Backend {
		table := "records_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		b, err := New(context.Background(), pool, table)
		require.NoError(t, err)
		t.Cleanup(func() {
			pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+b.table)
		})
		return b
	})
}
