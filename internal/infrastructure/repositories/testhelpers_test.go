package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_verified BOOLEAN NOT NULL DEFAULT 0,
		package_type TEXT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		payment_customer_id TEXT,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createVerificationCodeTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE verification_codes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		code TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
}

func createPasswordResetTokenTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE password_reset_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
}

func createApplicationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE applications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending',
		registration_status TEXT NOT NULL DEFAULT 'completed',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		form_status TEXT NOT NULL DEFAULT 'pending',
		photo_status TEXT NOT NULL DEFAULT 'pending',
		submission_status TEXT NOT NULL DEFAULT 'pending',
		spouse_first_name TEXT,
		spouse_last_name TEXT,
		children_count INTEGER NOT NULL DEFAULT 0,
		photo_key TEXT,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		currency TEXT NOT NULL,
		package_type TEXT NOT NULL,
		status TEXT NOT NULL,
		external_ref TEXT NOT NULL UNIQUE,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createEmailTemplateTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE email_templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		subject TEXT NOT NULL,
		html_body TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAdminTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE admins (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
