// Package repository defines the snapshot history store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/xptrack/internal/domain/model"
)

// Store provides read/write access to per-account snapshot history.
type Store interface {
	// Append stores a snapshot for account keeping dates ascending.
	// A snapshot with the same date as an existing one replaces it; replaced
	// reports whether that happened.
	Append(ctx context.Context, account string, snap model.RawSnapshot) (replaced bool, err error)

	// Window returns copies of the account's snapshots dated within
	// [from, to], ascending. A zero bound is open. Returns ErrNotFound if the
	// account has no history.
	Window(ctx context.Context, account string, from, to time.Time) ([]model.RawSnapshot, error)

	// Accounts returns the known accounts in ascending order.
	Accounts(ctx context.Context) []string

	// Count returns the number of accounts tracked.
	Count(ctx context.Context) int

	// Len returns the number of snapshots held across all accounts.
	Len(ctx context.Context) int
}
