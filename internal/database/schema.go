package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// mysqlSchema is applied in order; every statement is idempotent. Names,
// emails and titles use utf8mb4_bin so uniqueness and lookups compare
// bytes, as sqlite does, instead of MySQL's case-insensitive default.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		username VARCHAR(255) COLLATE utf8mb4_bin NOT NULL UNIQUE,
		email VARCHAR(255) COLLATE utf8mb4_bin NOT NULL UNIQUE,
		hashed_password VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movies (
		movie_id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) COLLATE utf8mb4_bin NOT NULL UNIQUE,
		genre VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		video_data LONGBLOB NULL,
		coverimage_data LONGBLOB NULL,
		cover_content_type VARCHAR(64) NOT NULL DEFAULT '',
		release_date VARCHAR(10) NOT NULL,
		user_id BIGINT UNSIGNED NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_movies_user FOREIGN KEY (user_id) REFERENCES users (user_id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS ratings (
		rating_id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		rating INT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_rating_range CHECK (rating >= 1 AND rating <= 5),
		CONSTRAINT uq_rating_user_movie UNIQUE (user_id, movie_id),
		CONSTRAINT fk_ratings_user FOREIGN KEY (user_id) REFERENCES users (user_id) ON DELETE CASCADE,
		CONSTRAINT fk_ratings_movie FOREIGN KEY (movie_id) REFERENCES movies (movie_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS parent_comments (
		parent_comment_id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_comments_user FOREIGN KEY (user_id) REFERENCES users (user_id) ON DELETE CASCADE,
		CONSTRAINT fk_comments_movie FOREIGN KEY (movie_id) REFERENCES movies (movie_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS comment_replies (
		reply_id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		parent_comment_id BIGINT UNSIGNED NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_replies_user FOREIGN KEY (user_id) REFERENCES users (user_id) ON DELETE CASCADE,
		CONSTRAINT fk_replies_parent FOREIGN KEY (parent_comment_id) REFERENCES parent_comments (parent_comment_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	// Tables created before the collation was pinned are converted in place.
	`ALTER TABLE users MODIFY username VARCHAR(255) COLLATE utf8mb4_bin NOT NULL`,
	`ALTER TABLE users MODIFY email VARCHAR(255) COLLATE utf8mb4_bin NOT NULL`,
	`ALTER TABLE movies MODIFY title VARCHAR(255) COLLATE utf8mb4_bin NOT NULL`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		movie_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL UNIQUE,
		genre TEXT NOT NULL,
		description TEXT NOT NULL,
		video_data BLOB,
		coverimage_data BLOB,
		cover_content_type TEXT NOT NULL DEFAULT '',
		release_date TEXT NOT NULL,
		user_id INTEGER REFERENCES users (user_id) ON DELETE SET NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		rating_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movies (movie_id) ON DELETE CASCADE,
		rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS parent_comments (
		parent_comment_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movies (movie_id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS comment_replies (
		reply_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		parent_comment_id INTEGER NOT NULL REFERENCES parent_comments (parent_comment_id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates the application tables if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	switch db.DriverName() {
	case "mysql":
		stmts = mysqlSchema
	case "sqlite3":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
