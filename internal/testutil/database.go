package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/storefront_test?parseTime=true&clientFoundRows=true"

// SetupTestDB opens the MySQL test database named by TEST_DB_DSN, or a local
// storefront_test database. The test is skipped when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the ledger tables and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM Transactions"); err != nil {
		t.Logf("failed to clean table Transactions: %v", err)
	}

	db.Close()
}

// SetupTestTables creates the ledger schema.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	createTransactionsTable := `
	CREATE TABLE IF NOT EXISTS Transactions (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		checkoutRequestId VARCHAR(100) NOT NULL UNIQUE,
		sessionId VARCHAR(64) NOT NULL,
		amount BIGINT NOT NULL,
		phoneNumber VARCHAR(15) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		resultCode VARCHAR(20),
		resultDesc VARCHAR(255),
		traceId VARCHAR(32) NOT NULL DEFAULT '',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_session (sessionId),
		INDEX idx_status (status)
	)`

	if _, err := db.Exec(createTransactionsTable); err != nil {
		t.Logf("failed to create table Transactions: %v", err)
	}
}
