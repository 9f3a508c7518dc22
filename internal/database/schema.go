package database

import (
	"context"
	"database/sql"
)

// schemaStatements creates every table the application needs.  Each
// statement is idempotent (CREATE TABLE IF NOT EXISTS) so Bootstrap can
// run on every startup.  The uniqueness constraints on users.phone,
// users.public_id and (match_id, stand) are load-bearing: the booking
// transaction relies on them to stop duplicate users and duplicate
// stands under concurrency.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(191) NOT NULL,
		team VARCHAR(191) NOT NULL,
		photo_url VARCHAR(512) NULL,
		runs BIGINT NOT NULL DEFAULT 0,
		wickets BIGINT NOT NULL DEFAULT 0,
		sixes BIGINT NOT NULL DEFAULT 0,
		hundreds BIGINT NOT NULL DEFAULT 0,
		matches BIGINT NOT NULL DEFAULT 0,
		average DECIMAL(8,2) NOT NULL DEFAULT 0,
		strike_rate DECIMAL(8,2) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS player_audit (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		player_id BIGINT UNSIGNED NOT NULL,
		old_values JSON NOT NULL,
		new_values JSON NOT NULL,
		changed_by VARCHAR(191) NOT NULL,
		changed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_audit_player FOREIGN KEY (player_id) REFERENCES players(id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		team1 VARCHAR(191) NOT NULL,
		team2 VARCHAR(191) NOT NULL,
		venue VARCHAR(191) NULL,
		start_time DATETIME NOT NULL,
		created_by VARCHAR(191) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stands (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		match_id BIGINT UNSIGNED NOT NULL,
		stand VARCHAR(64) NOT NULL,
		total BIGINT NOT NULL,
		available BIGINT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_stand_match FOREIGN KEY (match_id) REFERENCES matches(id),
		CONSTRAINT uq_stand_per_match UNIQUE (match_id, stand),
		CONSTRAINT chk_available CHECK (available >= 0 AND available <= total)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		public_id VARCHAR(32) NOT NULL,
		name VARCHAR(191) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT uq_user_public_id UNIQUE (public_id),
		CONSTRAINT uq_user_phone UNIQUE (phone)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		match_id BIGINT UNSIGNED NOT NULL,
		stand_id BIGINT UNSIGNED NOT NULL,
		stand VARCHAR(64) NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_booking_match FOREIGN KEY (match_id) REFERENCES matches(id),
		CONSTRAINT fk_booking_stand FOREIGN KEY (stand_id) REFERENCES stands(id),
		CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
}

// Bootstrap creates the schema when it does not exist yet.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
