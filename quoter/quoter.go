// Package quoter keeps a snapshot of tokens and pools and answers best-trade
// queries against it. A Quoter is safe for concurrent use: readers share an
// immutable snapshot that writers replace wholesale.
package quoter

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/defistate/uniswapv2-sdk-go/entities"
	"github.com/defistate/uniswapv2-sdk-go/numeric"
	"github.com/defistate/uniswapv2-sdk-go/protocols/tokenpoolregistry"
	"github.com/defistate/uniswapv2-sdk-go/protocols/tokenregistry"
	tokenindexer "github.com/defistate/uniswapv2-sdk-go/protocols/tokenregistry/indexer"
	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2"
	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2/calculator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrNoSnapshot   = errors.New("quoter has no snapshot yet")
	ErrUnknownToken = errors.New("unknown token")
	ErrUnknownPool  = errors.New("unknown pool")
	ErrNoRoute      = errors.New("no route found")
	ErrStaleBlock   = errors.New("block is older than the snapshot")
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the dependencies and search limits of a Quoter.
type Config struct {
	ChainID  uint64
	Logger   Logger
	Registry prometheus.Registerer
	Search   entities.BestTradeOptions
}

func (c *Config) validate() error {
	if c.ChainID == 0 {
		return errors.New("config: ChainID is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Search.MaxHops < 0 || c.Search.MaxNumResults < 0 {
		return errors.New("config: search limits cannot be negative")
	}
	return nil
}

type snapshot struct {
	block  uint64
	tokens tokenindexer.IndexedTokenSystem
	pools  []uniswapv2.Pool
	byPool map[common.Address]int
	pairs  []*entities.Pair
	// graph is indexed like pairs
	graph *tokenpoolregistry.TokenPoolRegistry
}

// Quote is the answer to one query: candidate trades, best first, all priced
// against the same snapshot block.
type Quote struct {
	Block  uint64
	Trades []*entities.Trade
}

// Best returns the first trade, or false for an empty quote.
func (q Quote) Best() (*entities.Trade, bool) {
	if len(q.Trades) == 0 {
		return nil, false
	}
	return q.Trades[0], true
}

type Quoter struct {
	chainID uint64
	search  entities.BestTradeOptions
	logger  Logger
	metrics *Metrics
	indexer *tokenindexer.Indexer

	// writeMu serializes writers across their whole read-patch-swap;
	// mu only guards current.
	writeMu sync.Mutex
	mu      sync.RWMutex
	current *snapshot
}

// New creates a Quoter with an empty snapshot.
func New(cfg *Config) (*Quoter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Quoter{
		chainID: cfg.ChainID,
		search:  cfg.Search,
		logger:  cfg.Logger,
		metrics: NewMetrics(cfg.Registry),
		indexer: tokenindexer.New(),
	}, nil
}

// Update replaces the whole snapshot. Pools whose tokens are not in tokens are
// left out with a warning; invalid tokens fail the update.
func (q *Quoter) Update(block uint64, tokens []tokenregistry.Token, pools []uniswapv2.Pool) error {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()
	return q.update(block, tokens, pools)
}

func (q *Quoter) update(block uint64, tokens []tokenregistry.Token, pools []uniswapv2.Pool) error {
	indexed, err := q.indexer.Index(tokens)
	if err != nil {
		return fmt.Errorf("index tokens: %w", err)
	}
	snap, err := q.build(block, indexed, pools)
	if err != nil {
		return err
	}
	q.swap(snap)
	return nil
}

// ApplyPoolDiff patches the pool set of the current snapshot. block must not
// be older than the snapshot.
func (q *Quoter) ApplyPoolDiff(block uint64, diff uniswapv2.UniswapV2SystemDiff) error {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()
	return q.applyPoolDiff(block, diff)
}

func (q *Quoter) applyPoolDiff(block uint64, diff uniswapv2.UniswapV2SystemDiff) error {
	prev := q.load()
	if prev == nil {
		return ErrNoSnapshot
	}
	if block < prev.block {
		return fmt.Errorf("%w: %d < %d", ErrStaleBlock, block, prev.block)
	}

	pools, err := uniswapv2.Patcher(prev.pools, diff)
	if err != nil {
		return fmt.Errorf("patch pools: %w", err)
	}
	snap, err := q.build(block, prev.tokens, pools)
	if err != nil {
		return err
	}
	q.swap(snap)
	return nil
}

// ApplyTokenDiff patches the token set of the current snapshot.
func (q *Quoter) ApplyTokenDiff(diff tokenregistry.TokenSystemDiff) error {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	prev := q.load()
	if prev == nil {
		return ErrNoSnapshot
	}
	tokens, err := tokenregistry.Patcher(prev.tokens.All(), diff)
	if err != nil {
		return fmt.Errorf("patch tokens: %w", err)
	}
	return q.update(prev.block, tokens, prev.pools)
}

func (q *Quoter) load() *snapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.current
}

func (q *Quoter) swap(snap *snapshot) {
	q.mu.Lock()
	q.current = snap
	q.mu.Unlock()

	q.metrics.snapshotBlock.Set(float64(snap.block))
	q.metrics.pairsLoaded.Set(float64(len(snap.pairs)))
	q.metrics.tokensLoaded.Set(float64(len(snap.tokens.All())))
	q.logger.Debug("Snapshot updated", "block", snap.block, "pairs", len(snap.pairs))
}

func (q *Quoter) build(block uint64, tokens tokenindexer.IndexedTokenSystem, pools []uniswapv2.Pool) (*snapshot, error) {
	snap := &snapshot{
		block:  block,
		tokens: tokens,
		pools:  pools,
		byPool: make(map[common.Address]int, len(pools)),
		pairs:  make([]*entities.Pair, 0, len(pools)),
	}
	tradable := make([]uniswapv2.Pool, 0, len(pools))
	for i, pool := range pools {
		if _, dup := snap.byPool[pool.Address]; dup {
			return nil, fmt.Errorf("duplicate pool %s", pool.Address.Hex())
		}
		snap.byPool[pool.Address] = i

		pair, err := q.pairOf(tokens, pool)
		if err != nil {
			q.metrics.pairsSkipped.Inc()
			q.logger.Warn("Skipping pool", "pool", pool.Address.Hex(), "error", err)
			continue
		}
		snap.pairs = append(snap.pairs, pair)
		tradable = append(tradable, pool)
	}
	snap.graph = tokenpoolregistry.New(tradable)
	return snap, nil
}

func (q *Quoter) pairOf(tokens tokenindexer.IndexedTokenSystem, pool uniswapv2.Pool) (*entities.Pair, error) {
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	t0, ok := tokens.Entity(pool.Token0)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, pool.Token0.Hex())
	}
	t1, ok := tokens.Entity(pool.Token1)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, pool.Token1.Hex())
	}
	if t0.ChainID() != q.chainID || t1.ChainID() != q.chainID {
		return nil, fmt.Errorf("%w: pool tokens are not on chain %d", entities.ErrChainMismatch, q.chainID)
	}

	r0, err := entities.FromRawAmount(t0, pool.Reserve0)
	if err != nil {
		return nil, err
	}
	r1, err := entities.FromRawAmount(t1, pool.Reserve1)
	if err != nil {
		return nil, err
	}
	return entities.NewPair(r0, r1, entities.WithAddress(pool.Address), entities.WithTotalSupply(pool.TotalSupply))
}

func (q *Quoter) snapshot() (*snapshot, error) {
	snap := q.load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Block returns the block of the current snapshot.
func (q *Quoter) Block() (uint64, bool) {
	snap, err := q.snapshot()
	if err != nil {
		return 0, false
	}
	return snap.block, true
}

// Pools returns a copy of the pool set of the current snapshot.
func (q *Quoter) Pools() []uniswapv2.Pool {
	snap, err := q.snapshot()
	if err != nil {
		return nil
	}
	return append([]uniswapv2.Pool(nil), snap.pools...)
}

// Pairs returns the pairs of the current snapshot.
func (q *Quoter) Pairs() []*entities.Pair {
	snap, err := q.snapshot()
	if err != nil {
		return nil
	}
	return append([]*entities.Pair(nil), snap.pairs...)
}

// Token resolves address against the current snapshot.
func (q *Quoter) Token(address common.Address) (*entities.Token, error) {
	snap, err := q.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.token(address)
}

// candidates returns, in snapshot order, the pairs a route of at most maxHops
// pairs starting at token can use.
func (s *snapshot) candidates(token common.Address, maxHops int) []*entities.Pair {
	reachable := s.graph.Reachable(token, maxHops)
	pairs := make([]*entities.Pair, len(reachable))
	for i, idx := range reachable {
		pairs[i] = s.pairs[idx]
	}
	return pairs
}

func (q *Quoter) maxHops() int {
	if q.search.MaxHops > 0 {
		return q.search.MaxHops
	}
	return entities.DefaultMaxHops
}

func (s *snapshot) token(address common.Address) (*entities.Token, error) {
	t, ok := s.tokens.Entity(address)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, address.Hex())
	}
	return t, nil
}

// QuoteExactIn finds the trades that turn amountIn of tokenIn into the most tokenOut.
func (q *Quoter) QuoteExactIn(tokenIn, tokenOut common.Address, amountIn *big.Int) (Quote, error) {
	label := entities.ExactInput.String()
	timer := prometheus.NewTimer(q.metrics.quoteDuration.WithLabelValues(label))
	defer timer.ObserveDuration()

	quote, err := q.quoteExactIn(tokenIn, tokenOut, amountIn)
	if err != nil {
		q.metrics.quoteErrors.WithLabelValues(label).Inc()
		return Quote{}, err
	}
	return quote, nil
}

func (q *Quoter) quoteExactIn(tokenIn, tokenOut common.Address, amountIn *big.Int) (Quote, error) {
	snap, err := q.snapshot()
	if err != nil {
		return Quote{}, err
	}
	in, err := snap.token(tokenIn)
	if err != nil {
		return Quote{}, err
	}
	out, err := snap.token(tokenOut)
	if err != nil {
		return Quote{}, err
	}
	amount, err := entities.FromRawAmount(in, amountIn)
	if err != nil {
		return Quote{}, err
	}

	trades, err := entities.BestTradeExactIn(snap.candidates(tokenIn, q.maxHops()), amount, out, q.search)
	if err != nil {
		return Quote{}, err
	}
	if len(trades) == 0 {
		return Quote{}, fmt.Errorf("%w: %s -> %s", ErrNoRoute, in.Symbol(), out.Symbol())
	}
	return Quote{Block: snap.block, Trades: trades}, nil
}

// QuoteExactOut finds the trades that buy amountOut of tokenOut for the least tokenIn.
func (q *Quoter) QuoteExactOut(tokenIn, tokenOut common.Address, amountOut *big.Int) (Quote, error) {
	label := entities.ExactOutput.String()
	timer := prometheus.NewTimer(q.metrics.quoteDuration.WithLabelValues(label))
	defer timer.ObserveDuration()

	quote, err := q.quoteExactOut(tokenIn, tokenOut, amountOut)
	if err != nil {
		q.metrics.quoteErrors.WithLabelValues(label).Inc()
		return Quote{}, err
	}
	return quote, nil
}

func (q *Quoter) quoteExactOut(tokenIn, tokenOut common.Address, amountOut *big.Int) (Quote, error) {
	snap, err := q.snapshot()
	if err != nil {
		return Quote{}, err
	}
	in, err := snap.token(tokenIn)
	if err != nil {
		return Quote{}, err
	}
	out, err := snap.token(tokenOut)
	if err != nil {
		return Quote{}, err
	}
	amount, err := entities.FromRawAmount(out, amountOut)
	if err != nil {
		return Quote{}, err
	}

	trades, err := entities.BestTradeExactOut(snap.candidates(tokenOut, q.maxHops()), in, amount, q.search)
	if err != nil {
		return Quote{}, err
	}
	if len(trades) == 0 {
		return Quote{}, fmt.Errorf("%w: %s -> %s", ErrNoRoute, in.Symbol(), out.Symbol())
	}
	return Quote{Block: snap.block, Trades: trades}, nil
}

// SpotRate samples one pool with 1% of its tokenIn reserve and returns the
// realized tokenOut amount per whole tokenIn, as a price in display units.
func (q *Quoter) SpotRate(pool, tokenIn common.Address) (entities.Price, error) {
	snap, err := q.snapshot()
	if err != nil {
		return entities.Price{}, err
	}
	i, ok := snap.byPool[pool]
	if !ok {
		return entities.Price{}, fmt.Errorf("%w: %s", ErrUnknownPool, pool.Hex())
	}
	p := snap.pools[i]

	tokenOut := p.Token1
	if tokenIn == p.Token1 {
		tokenOut = p.Token0
	}
	in, err := snap.token(tokenIn)
	if err != nil {
		return entities.Price{}, err
	}
	out, err := snap.token(tokenOut)
	if err != nil {
		return entities.Price{}, err
	}

	scale := numeric.Pow10(uint(in.Decimals()))
	rate, err := calculator.GetExchangeRate(tokenIn, tokenOut, scale, p)
	if err != nil {
		return entities.Price{}, err
	}
	return entities.NewPrice(in, out, rate, scale)
}
