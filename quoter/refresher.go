package quoter

import (
	"context"
	"errors"
	"time"

	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
)

const (
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 30 * time.Second
)

// PoolSource reads the current state of a set of pools at one block.
// *ethereum.Reader satisfies it.
type PoolSource interface {
	ReadPools(ctx context.Context, addresses []common.Address) (uint64, []uniswapv2.Pool, error)
}

// Refresh reads the tracked pools once and applies their new reserves to the
// snapshot. The result is dropped when the snapshot has already moved to the
// same or a later block while the read was in flight. Pools added or removed
// during the read are left as they are.
func (q *Quoter) Refresh(ctx context.Context, source PoolSource) error {
	snap, err := q.snapshot()
	if err != nil {
		return err
	}

	addresses := make([]common.Address, len(snap.pools))
	for i, p := range snap.pools {
		addresses[i] = p.Address
	}
	block, pools, err := source.ReadPools(ctx, addresses)
	if err != nil {
		return err
	}

	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	current := q.load()
	if block <= current.block {
		q.logger.Debug("Dropping stale read", "read_block", block, "snapshot_block", current.block)
		return nil
	}

	updates := uniswapv2.Differ(current.pools, pools).Updates
	if len(updates) == 0 {
		next := *current
		next.block = block
		q.swap(&next)
		return nil
	}
	q.logger.Debug("Applying pool diff", "from", current.block, "to", block, "updated", len(updates))
	return q.applyPoolDiff(block, uniswapv2.UniswapV2SystemDiff{Updates: updates})
}

// Run refreshes the snapshot every interval until ctx is done. Failed reads
// are retried with exponential backoff.
func (q *Quoter) Run(ctx context.Context, source PoolSource, interval time.Duration) error {
	delay := initialRetryDelay
	wait := time.Duration(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		err := q.Refresh(ctx, source)
		switch {
		case err == nil:
			delay = initialRetryDelay
			wait = interval
		case errors.Is(err, context.Canceled):
			return err
		default:
			q.logger.Warn("Refresh failed", "error", err, "retry_in", delay)
			wait = delay
			delay = min(delay*2, maxRetryDelay)
		}
	}
}
