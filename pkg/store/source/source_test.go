package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverName(t *testing.T) {
	cases := map[string]string{
		"":           "pgx",
		"postgres":   "pgx",
		"PostgreSQL": "pgx",
		"sqlite3":    "sqlite",
		"duckdb":     "duckdb",
	}
	for alias, want := range cases {
		got, err := DriverName(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, want, got, alias)
	}

	_, err := DriverName("oracle")
	assert.Error(t, err)
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.db")

	db, err := Open(context.Background(), Settings{Driver: "sqlite", DSN: path})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE traffic_sources_s (source TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO traffic_sources_s (source) VALUES ('google'), ('ads')`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM traffic_sources_s`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestOpen_Errors(t *testing.T) {
	t.Run("empty dsn", func(t *testing.T) {
		db, err := Open(context.Background(), Settings{Driver: "pgx"})
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("unknown driver", func(t *testing.T) {
		db, err := Open(context.Background(), Settings{Driver: "mssql", DSN: "x"})
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}
