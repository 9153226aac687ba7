package read

import "context"

// Store keeps one last-read watermark per (thread, user).
type Store interface {
	// MarkRead raises the watermark to tsMS; never lowers it.
	MarkRead(ctx context.Context, threadID int64, userID string, tsMS int64) error

	// Get returns the watermark, or 0 (epoch zero) when no mark exists.
	Get(ctx context.Context, threadID int64, userID string) (int64, error)
}
