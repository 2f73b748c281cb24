package repositories

import (
	"testing"
	"time"

	"meritboard/internal/config"
	"meritboard/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestManager builds a database manager backed by a sqlmock
// connection.
func newTestManager(t *testing.T) (*database.Manager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.DatabaseConfig{SlowQueryThreshold: time.Second}
	return database.NewManagerWithDB(db, cfg, zap.NewNop()), mock
}
