// Package sequence numbers storefront events within a partition (one order or
// one product), so consumers can spot gaps and reordering.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrEmptyPartition = errors.New("sequence: partition key is required")

type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Counter keeps one row per partition in event_sequences.
type Counter struct {
	db Querier
}

func NewCounter(db Querier) *Counter {
	return &Counter{db: db}
}

const nextValueSQL = `
	INSERT INTO event_sequences AS s (partition_key, value)
	VALUES ($1, 1)
	ON CONFLICT (partition_key)
	DO UPDATE SET value = s.value + 1, bumped_at = now()
	RETURNING s.value`

// Next returns the number for the partition's next event, starting at 1.
// A number taken by a publish that later fails is not reused.
func (c *Counter) Next(ctx context.Context, partition string) (int64, error) {
	if partition == "" {
		return 0, ErrEmptyPartition
	}

	var n int64
	if err := c.db.QueryRow(ctx, nextValueSQL, partition).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", partition, err)
	}
	return n, nil
}
