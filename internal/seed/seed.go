package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcouto/ensalamento/internal/pkg/logger"
	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

// CreateDefaultData writes the static time-block catalog into the database.
// Allocation and reservation rows reference time_blocks by code, so the
// catalog must exist before any scheduling happens. Re-runs are no-ops.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool) error {
	inserted := 0
	for i, block := range schedule.Blocks() {
		tag, err := dbPool.Exec(ctx, `
			INSERT INTO time_blocks (code, period, block_order, starts_at, ends_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (code) DO NOTHING`,
			block.Code, string(block.Period), i, block.Start, block.End)
		if err != nil {
			return fmt.Errorf("failed to seed time block %s: %w", block.Code, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if inserted > 0 {
		logger.Info().Int("blocks", inserted).Msg("Time block catalog seeded")
	}
	return nil
}
