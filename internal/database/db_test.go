package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-listing/internal/config"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	// Applying the schema twice is a no-op.
	require.NoError(t, Migrate(ctx, db))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`))
	assert.Equal(t, []string{"comment_replies", "movies", "parent_comments", "ratings", "users"}, tables)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db))

	_, err = db.Exec(`INSERT INTO ratings (user_id, movie_id, rating) VALUES (99, 99, 3)`)
	assert.Error(t, err)
}

func TestRatingRangeConstraint(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db))

	_, err = db.Exec(`INSERT INTO users (full_name, username, email, hashed_password) VALUES ('A', 'a', 'a@x.io', 'h')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO movies (title, genre, description, release_date, user_id) VALUES ('M', 'G', 'D', '2024-07-23', 1)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO ratings (user_id, movie_id, rating) VALUES (1, 1, 6)`)
	assert.Error(t, err)
	_, err = db.Exec(`INSERT INTO ratings (user_id, movie_id, rating) VALUES (1, 1, 5)`)
	assert.NoError(t, err)
}

func TestOpenFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.db")
	db, err := OpenFromConfig(config.Config{DBDriver: "sqlite3", DBPath: path})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, "sqlite3", db.DriverName())

	_, err = OpenFromConfig(config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMySQLSchemaPinsBinaryCollation(t *testing.T) {
	for _, col := range []string{"username VARCHAR(255)", "email VARCHAR(255)", "title VARCHAR(255)"} {
		var create, alter bool
		for _, stmt := range mysqlSchema {
			if !strings.Contains(stmt, col+" COLLATE utf8mb4_bin NOT NULL") {
				continue
			}
			if strings.HasPrefix(stmt, "CREATE TABLE") {
				create = true
			}
			if strings.HasPrefix(stmt, "ALTER TABLE") {
				alter = true
			}
		}
		assert.True(t, create, "create %s", col)
		assert.True(t, alter, "alter %s", col)
	}
}

func TestSQLiteUniqueColumnsAreCaseSensitive(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))

	insert := `INSERT INTO users (full_name, username, email, hashed_password) VALUES (?,?,?,?)`
	_, err = db.ExecContext(ctx, insert, "Ada", "ada", "a1@example.com", "h")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "Ada", "Ada", "a2@example.com", "h")
	assert.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "Ada", "ada", "a3@example.com", "h")
	assert.Error(t, err)
}
