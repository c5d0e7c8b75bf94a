package worker

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

//go:embed schema/clickhouse.sql
var clickhouseSchema string

// EnsureSchema creates the analytics database and tables if missing.
// Statements run one at a time; the driver rejects multi-statement input.
func EnsureSchema(ctx context.Context, conn driver.Conn, logger *zap.Logger) error {
	log := logger.Sugar()
	for _, stmt := range strings.Split(clickhouseSchema, ";") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if err := conn.Exec(ctx, trimmed); err != nil {
			return fmt.Errorf("clickhouse schema: %w (statement %q)", err, trimmed[:min(len(trimmed), 50)]+"...")
		}
	}
	log.Infow("Analytics schema ready", "db", "ClickHouse")
	return nil
}
