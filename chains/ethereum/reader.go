// Package ethereum reads Uniswap V2 pair state straight from contract storage
// over JSON-RPC. It never sends transactions.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/defistate/uniswapv2-sdk-go/chains"
	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDialTimeout = 15 * time.Second
	defaultConcurrency = 8
)

// ErrNotAPair is returned when an address holds no pair state.
var ErrNotAPair = errors.New("address is not an initialized pair")

// StorageClient is the part of *ethclient.Client the reader uses.
type StorageClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

// Reader fetches pool snapshots at a single pinned block.
type Reader struct {
	client      StorageClient
	logger      chains.Logger
	concurrency int
	readTotal   bool
	closer      func()
}

// Option configures the Reader.
// The interface method is unexported to prevent external modification after construction.
type Option interface {
	apply(*Reader)
}

type funcOption func(*Reader)

func (f funcOption) apply(r *Reader) {
	f(r)
}

func newOption(f func(*Reader)) Option {
	return funcOption(f)
}

// WithConcurrency bounds the number of pools read in parallel.
func WithConcurrency(n int) Option {
	return newOption(func(r *Reader) {
		if n > 0 {
			r.concurrency = n
		}
	})
}

// WithTotalSupply also reads the LP token supply (slot 0) of each pool.
func WithTotalSupply() Option {
	return newOption(func(r *Reader) {
		r.readTotal = true
	})
}

// NewReader wraps an existing client.
func NewReader(client StorageClient, logger chains.Logger, opts ...Option) *Reader {
	r := &Reader{
		client:      client,
		logger:      logger,
		concurrency: defaultConcurrency,
		closer:      func() {},
	}
	for _, opt := range opts {
		opt.apply(r)
	}
	return r
}

// Dial connects to an Ethereum JSON-RPC endpoint.
func Dial(ctx context.Context, url string, logger chains.Logger, opts ...Option) (*Reader, error) {
	dialCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	ec, err := ethclient.DialContext(dialCtx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc url: %w", err)
	}
	r := NewReader(ec, logger, opts...)
	r.closer = ec.Close
	logger.Info("Reserve reader connected", "url", url)
	return r, nil
}

// Close releases the underlying connection, if the Reader owns one.
func (r *Reader) Close() {
	r.closer()
}

// ReadPools reads every pool at the latest block. All pools come from the same
// block so reserves across pools are mutually consistent.
func (r *Reader) ReadPools(ctx context.Context, addresses []common.Address) (uint64, []uniswapv2.Pool, error) {
	block, err := r.client.BlockNumber(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("block number: %w", err)
	}
	blockNum := new(big.Int).SetUint64(block)

	start := time.Now()
	pools := make([]uniswapv2.Pool, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, address := range addresses {
		g.Go(func() error {
			pool, err := r.ReadPool(gctx, address, blockNum)
			if err != nil {
				return err
			}
			pools[i] = pool
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	r.logger.Debug("Pools read", "block", block, "count", len(pools), "took", time.Since(start))
	return block, pools, nil
}

// ReadPool reads one pool at blockNum (nil means latest).
func (r *Reader) ReadPool(ctx context.Context, address common.Address, blockNum *big.Int) (uniswapv2.Pool, error) {
	token0Word, err := r.readSlot(ctx, address, blockNum, uniswapv2.Token0Slot)
	if err != nil {
		return uniswapv2.Pool{}, err
	}
	token1Word, err := r.readSlot(ctx, address, blockNum, uniswapv2.Token1Slot)
	if err != nil {
		return uniswapv2.Pool{}, err
	}
	reservesWord, err := r.readSlot(ctx, address, blockNum, uniswapv2.ReservesSlot)
	if err != nil {
		return uniswapv2.Pool{}, err
	}

	token0 := common.BytesToAddress(token0Word)
	token1 := common.BytesToAddress(token1Word)
	if token0 == (common.Address{}) || token1 == (common.Address{}) {
		return uniswapv2.Pool{}, fmt.Errorf("%w: %s", ErrNotAPair, address.Hex())
	}

	reserve0, reserve1, ts, err := uniswapv2.DecodeReserves(common.LeftPadBytes(reservesWord, 32))
	if err != nil {
		return uniswapv2.Pool{}, fmt.Errorf("pool %s: %w", address.Hex(), err)
	}

	pool := uniswapv2.Pool{
		Address:            address,
		Token0:             token0,
		Token1:             token1,
		Reserve0:           reserve0,
		Reserve1:           reserve1,
		BlockTimestampLast: ts,
	}

	if r.readTotal {
		supplyWord, err := r.readSlot(ctx, address, blockNum, uniswapv2.TotalSupplySlot)
		if err != nil {
			return uniswapv2.Pool{}, err
		}
		pool.TotalSupply = new(big.Int).SetBytes(supplyWord)
	}

	if err := pool.Validate(); err != nil {
		return uniswapv2.Pool{}, fmt.Errorf("pool %s: %w", address.Hex(), err)
	}
	return pool, nil
}

func (r *Reader) readSlot(ctx context.Context, pool common.Address, blockNum *big.Int, slot uint64) ([]byte, error) {
	key := common.BigToHash(new(big.Int).SetUint64(slot))
	b, err := r.client.StorageAt(ctx, pool, key, blockNum)
	if err != nil {
		return nil, fmt.Errorf("storageAt slot %d (pool %s, block %v): %w", slot, pool.Hex(), blockNum, err)
	}
	return b, nil
}
