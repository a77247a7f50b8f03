package ledger

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/config"
)

func NewModule(db *sql.DB, cfg config.LedgerConfig, logger *zap.Logger) *Recorder {
	repo := NewMySQLTransactionRepository(db)
	return NewRecorder(repo, logger, cfg.MaxRetryAttempts)
}
