package postgresql

import (
	"context"
	"fmt"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
)

type refreshQueueRepository struct {
	db *database.DB
}

func NewRefreshQueueRepository(db *database.DB) timesheet.RefreshQueueRepository {
	return &refreshQueueRepository{db: db}
}

// Enqueue implements timesheet.RefreshQueueRepository. An entry already
// pending is not enqueued twice; the worker refreshes from current state
// anyway so one pass covers every invalidation since the last drain.
func (r *refreshQueueRepository) Enqueue(ctx context.Context, entryIDs []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO snapshot_refresh_queue (entry_id)
		SELECT unnest($1::uuid[])
		ON CONFLICT (entry_id) WHERE done_at IS NULL AND failed_at IS NULL
		DO NOTHING
	`

	if _, err := q.Exec(ctx, query, entryIDs); err != nil {
		return fmt.Errorf("failed to enqueue snapshot refreshes: %w", err)
	}

	return nil
}

// Dequeue implements timesheet.RefreshQueueRepository. Rows are locked with
// SKIP LOCKED so concurrent workers never process the same item.
func (r *refreshQueueRepository) Dequeue(ctx context.Context, limit int) ([]timesheet.RefreshItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, entry_id, attempts, last_error, enqueued_at
		FROM snapshot_refresh_queue
		WHERE done_at IS NULL AND failed_at IS NULL
		ORDER BY enqueued_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue snapshot refreshes: %w", err)
	}
	defer rows.Close()

	var items []timesheet.RefreshItem
	for rows.Next() {
		var item timesheet.RefreshItem
		if err := rows.Scan(&item.ID, &item.EntryID, &item.Attempts, &item.LastError, &item.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan refresh item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh items: %w", err)
	}

	return items, nil
}

// MarkDone implements timesheet.RefreshQueueRepository.
func (r *refreshQueueRepository) MarkDone(ctx context.Context, itemID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE snapshot_refresh_queue SET done_at = NOW() WHERE id = $1`

	if _, err := q.Exec(ctx, query, itemID); err != nil {
		return fmt.Errorf("failed to mark refresh item done: %w", err)
	}

	return nil
}

// MarkFailed implements timesheet.RefreshQueueRepository. The attempt
// counter is bumped; the item stays retryable until the service-side bound
// marks it failed for good.
func (r *refreshQueueRepository) MarkFailed(ctx context.Context, itemID string, reason string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE snapshot_refresh_queue
		SET attempts = attempts + 1,
		    last_error = $2,
		    failed_at = CASE WHEN attempts + 1 >= 5 THEN NOW() ELSE NULL END
		WHERE id = $1
	`

	if _, err := q.Exec(ctx, query, itemID, reason); err != nil {
		return fmt.Errorf("failed to mark refresh item failed: %w", err)
	}

	return nil
}
