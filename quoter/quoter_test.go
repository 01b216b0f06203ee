package quoter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/defistate/uniswapv2-sdk-go/entities"
	"github.com/defistate/uniswapv2-sdk-go/numeric"
	"github.com/defistate/uniswapv2-sdk-go/protocols/tokenregistry"
	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x0000000000000000000000000000000000000001")
	addrB = common.HexToAddress("0x0000000000000000000000000000000000000002")
	addrC = common.HexToAddress("0x0000000000000000000000000000000000000003")
	addrD = common.HexToAddress("0x0000000000000000000000000000000000000004")

	poolAB = common.HexToAddress("0x00000000000000000000000000000000000000ab")
	poolAC = common.HexToAddress("0x00000000000000000000000000000000000000ac")
	poolCB = common.HexToAddress("0x00000000000000000000000000000000000000cb")
	poolAD = common.HexToAddress("0x00000000000000000000000000000000000000ad")
)

func testTokens() []tokenregistry.Token {
	return []tokenregistry.Token{
		{ChainID: 1, Address: addrA, Name: "Token A", Symbol: "A", Decimals: 18},
		{ChainID: 1, Address: addrB, Name: "Token B", Symbol: "B", Decimals: 18},
		{ChainID: 1, Address: addrC, Name: "Token C", Symbol: "C", Decimals: 18},
	}
}

func testPool(address, token0, token1 common.Address, r0, r1 int64) uniswapv2.Pool {
	return uniswapv2.Pool{
		Address:  address,
		Token0:   token0,
		Token1:   token1,
		Reserve0: big.NewInt(r0),
		Reserve1: big.NewInt(r1),
	}
}

func testPools() []uniswapv2.Pool {
	return []uniswapv2.Pool{
		testPool(poolAB, addrA, addrB, 1000, 1100),
		testPool(poolAC, addrA, addrC, 1000, 1000),
		testPool(poolCB, addrB, addrC, 1000, 1000),
	}
}

func newTestQuoter(t *testing.T) (*Quoter, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	q, err := New(&Config{
		ChainID:  1,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: reg,
	})
	require.NoError(t, err)
	return q, reg
}

func bestTrade(t *testing.T, quote Quote) *entities.Trade {
	t.Helper()
	best, ok := quote.Best()
	require.True(t, ok, "quote has no trades")
	return best
}

func TestEmptyQuote(t *testing.T) {
	best, ok := Quote{}.Best()
	assert.False(t, ok)
	assert.Nil(t, best)
}

func TestConfigValidate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{ChainID: 1, Logger: logger, Registry: prometheus.NewRegistry()}},
		{name: "missing chain", cfg: Config{Logger: logger, Registry: prometheus.NewRegistry()}, wantErr: true},
		{name: "missing logger", cfg: Config{ChainID: 1, Registry: prometheus.NewRegistry()}, wantErr: true},
		{name: "missing registry", cfg: Config{ChainID: 1, Logger: logger}, wantErr: true},
		{
			name:    "negative hops",
			cfg:     Config{ChainID: 1, Logger: logger, Registry: prometheus.NewRegistry(), Search: entities.BestTradeOptions{MaxHops: -1}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(&tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestQuoteBeforeUpdate(t *testing.T) {
	q, reg := newTestQuoter(t)

	_, err := q.QuoteExactIn(addrA, addrB, big.NewInt(100))
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.ErrorIs(t, q.ApplyPoolDiff(1, uniswapv2.UniswapV2SystemDiff{}), ErrNoSnapshot)

	_, ok := q.Block()
	assert.False(t, ok)
	n, err := testutil.GatherAndCount(reg, "uniswapv2_quoter_quote_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdate(t *testing.T) {
	q, reg := newTestQuoter(t)

	pools := append(testPools(), testPool(poolAD, addrA, addrD, 1000, 1000))
	require.NoError(t, q.Update(10, testTokens(), pools))

	block, ok := q.Block()
	require.True(t, ok)
	assert.Equal(t, uint64(10), block)
	assert.Len(t, q.Pools(), 4, "the raw pool set keeps every pool")
	assert.Len(t, q.Pairs(), 3, "pools with unknown tokens are not tradable")

	assert.Equal(t, float64(3), testutil.ToFloat64(q.metrics.pairsLoaded))
	assert.Equal(t, float64(3), testutil.ToFloat64(q.metrics.tokensLoaded))
	assert.Equal(t, float64(10), testutil.ToFloat64(q.metrics.snapshotBlock))
	assert.Equal(t, float64(1), testutil.ToFloat64(q.metrics.pairsSkipped))
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.NotZero(t, n)

	t.Run("duplicate pool", func(t *testing.T) {
		dup := append(testPools(), testPool(poolAB, addrA, addrB, 1, 1))
		assert.Error(t, q.Update(11, testTokens(), dup))
	})

	t.Run("duplicate token", func(t *testing.T) {
		tokens := append(testTokens(), testTokens()[0])
		assert.Error(t, q.Update(11, tokens, testPools()))
		block, _ := q.Block()
		assert.Equal(t, uint64(10), block)
	})
}

func TestQuoteExactIn(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()))

	quote, err := q.QuoteExactIn(addrA, addrB, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), quote.Block)
	require.Len(t, quote.Trades, 2)

	best := bestTrade(t, quote)
	assert.Equal(t, int64(99), best.OutputAmount().Raw().Int64())
	assert.Equal(t, 1, best.Route().Hops())

	// A -> C -> B: 100 -> 90 -> 82
	assert.Equal(t, int64(82), quote.Trades[1].OutputAmount().Raw().Int64())

	t.Run("unknown token", func(t *testing.T) {
		_, err := q.QuoteExactIn(addrA, addrD, big.NewInt(100))
		assert.ErrorIs(t, err, ErrUnknownToken)
	})

	t.Run("identical tokens", func(t *testing.T) {
		_, err := q.QuoteExactIn(addrA, addrA, big.NewInt(100))
		assert.ErrorIs(t, err, entities.ErrIdenticalAddress)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := q.QuoteExactIn(addrA, addrB, big.NewInt(-1))
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})
}

func TestQuoteNoRoute(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()[:1]))

	_, err := q.QuoteExactIn(addrA, addrC, big.NewInt(100))
	assert.ErrorIs(t, err, ErrNoRoute)
	assert.Equal(t, float64(1), testutil.ToFloat64(q.metrics.quoteErrors.WithLabelValues(entities.ExactInput.String())))
}

func TestQuoteExactOut(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()))

	quote, err := q.QuoteExactOut(addrA, addrB, big.NewInt(99))
	require.NoError(t, err)

	best := bestTrade(t, quote)
	assert.Equal(t, entities.ExactOutput, best.TradeType())
	assert.Equal(t, int64(100), best.InputAmount().Raw().Int64())
	assert.Equal(t, int64(99), best.OutputAmount().Raw().Int64())

	t.Run("more than the reserves", func(t *testing.T) {
		_, err := q.QuoteExactOut(addrA, addrB, big.NewInt(5000))
		assert.ErrorIs(t, err, ErrNoRoute)
	})
}

func TestApplyPoolDiff(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()[:1]))

	diff := uniswapv2.UniswapV2SystemDiff{
		Updates: []uniswapv2.Pool{testPool(poolAB, addrA, addrB, 2000, 2200)},
	}
	require.NoError(t, q.ApplyPoolDiff(11, diff))

	quote, err := q.QuoteExactIn(addrA, addrB, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(11), quote.Block)
	assert.Equal(t, int64(104), bestTrade(t, quote).OutputAmount().Raw().Int64())

	t.Run("unknown pool", func(t *testing.T) {
		bad := uniswapv2.UniswapV2SystemDiff{Updates: []uniswapv2.Pool{testPool(poolAC, addrA, addrC, 1, 1)}}
		assert.Error(t, q.ApplyPoolDiff(12, bad))
		block, _ := q.Block()
		assert.Equal(t, uint64(11), block, "a failed patch keeps the previous snapshot")
	})
}

func TestApplyTokenDiff(t *testing.T) {
	q, _ := newTestQuoter(t)
	pools := append(testPools(), testPool(poolAD, addrA, addrD, 1000, 1000))
	require.NoError(t, q.Update(10, testTokens(), pools))
	require.Len(t, q.Pairs(), 3)

	diff := tokenregistry.TokenSystemDiff{
		Additions: []tokenregistry.Token{{ChainID: 1, Address: addrD, Name: "Token D", Symbol: "D", Decimals: 6}},
	}
	require.NoError(t, q.ApplyTokenDiff(diff))
	assert.Len(t, q.Pairs(), 4)

	d, err := q.Token(addrD)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), d.Decimals())
}

func TestSpotRate(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()))

	// 1% of 1000 is 10 A, which buys 10 B.
	price, err := q.SpotRate(poolAB, addrA)
	require.NoError(t, err)
	assert.Equal(t, "A", price.BaseToken().Symbol())
	assert.Equal(t, "B", price.QuoteToken().Symbol())
	assert.True(t, price.Fraction().EqualTo(numeric.FromInt64(1)))

	_, err = q.SpotRate(poolAD, addrA)
	assert.ErrorIs(t, err, ErrUnknownPool)
}

type fakeSource struct {
	mu    sync.Mutex
	calls int
	block uint64
	pools []uniswapv2.Pool
	err   error
	// during runs while the read is in flight
	during func()
}

func (f *fakeSource) ReadPools(ctx context.Context, addresses []common.Address) (uint64, []uniswapv2.Pool, error) {
	if f.during != nil {
		f.during()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.block, f.pools, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRefresh(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()))

	t.Run("stale block is ignored", func(t *testing.T) {
		src := &fakeSource{block: 10, pools: []uniswapv2.Pool{testPool(poolAB, addrA, addrB, 1, 1)}}
		require.NoError(t, q.Refresh(context.Background(), src))
		assert.Equal(t, int64(1000), q.Pools()[0].Reserve0.Int64())
	})

	t.Run("unchanged pools advance the block", func(t *testing.T) {
		src := &fakeSource{block: 11, pools: testPools()}
		require.NoError(t, q.Refresh(context.Background(), src))
		block, _ := q.Block()
		assert.Equal(t, uint64(11), block)
	})

	t.Run("changed reserves are patched in", func(t *testing.T) {
		pools := testPools()
		pools[0] = testPool(poolAB, addrA, addrB, 2000, 2200)
		src := &fakeSource{block: 12, pools: pools}
		require.NoError(t, q.Refresh(context.Background(), src))

		quote, err := q.QuoteExactIn(addrA, addrB, big.NewInt(100))
		require.NoError(t, err)
		assert.Equal(t, uint64(12), quote.Block)
		assert.Equal(t, int64(104), bestTrade(t, quote).OutputAmount().Raw().Int64())
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("boom")
		assert.ErrorIs(t, q.Refresh(context.Background(), &fakeSource{err: boom}), boom)
	})
}

func TestRefreshRacingWriter(t *testing.T) {
	t.Run("older read does not roll back a newer patch", func(t *testing.T) {
		q, _ := newTestQuoter(t)
		require.NoError(t, q.Update(1, testTokens(), testPools()))

		src := &fakeSource{
			block: 5,
			pools: testPools(),
			during: func() {
				diff := uniswapv2.UniswapV2SystemDiff{
					Updates: []uniswapv2.Pool{testPool(poolAB, addrA, addrB, 9000, 9900)},
				}
				require.NoError(t, q.ApplyPoolDiff(10, diff))
			},
		}
		require.NoError(t, q.Refresh(context.Background(), src))

		block, _ := q.Block()
		assert.Equal(t, uint64(10), block)
		assert.Equal(t, int64(9000), q.Pools()[0].Reserve0.Int64())
	})

	t.Run("pool added during the read survives", func(t *testing.T) {
		q, _ := newTestQuoter(t)
		require.NoError(t, q.Update(1, testTokens(), testPools()))

		pools := testPools()
		pools[0] = testPool(poolAB, addrA, addrB, 2000, 2200)
		src := &fakeSource{
			block: 11,
			pools: pools,
			during: func() {
				diff := uniswapv2.UniswapV2SystemDiff{
					Additions: []uniswapv2.Pool{testPool(poolAD, addrA, addrD, 1000, 1000)},
				}
				require.NoError(t, q.ApplyPoolDiff(2, diff))
			},
		}
		require.NoError(t, q.Refresh(context.Background(), src))

		block, _ := q.Block()
		assert.Equal(t, uint64(11), block)
		got := q.Pools()
		require.Len(t, got, 4)
		assert.Equal(t, int64(2000), got[0].Reserve0.Int64())
	})

	t.Run("concurrent writers never move the block backwards", func(t *testing.T) {
		q, _ := newTestQuoter(t)
		require.NoError(t, q.Update(1, testTokens(), testPools()))

		var wg sync.WaitGroup
		for b := uint64(2); b <= 40; b++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = q.Refresh(context.Background(), &fakeSource{block: b, pools: testPools()})
			}()
		}
		wg.Wait()

		block, _ := q.Block()
		assert.Equal(t, uint64(40), block)
	})
}

func TestApplyPoolDiffRejectsStaleBlock(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()))

	err := q.ApplyPoolDiff(9, uniswapv2.UniswapV2SystemDiff{})
	assert.ErrorIs(t, err, ErrStaleBlock)
}

func TestRunStopsOnCancel(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()))

	src := &fakeSource{block: 11, pools: testPools()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- q.Run(ctx, src, time.Millisecond)
	}()

	require.Eventually(t, func() bool { return src.callCount() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCandidatesFollowHops(t *testing.T) {
	q, _ := newTestQuoter(t)
	require.NoError(t, q.Update(10, testTokens(), testPools()))
	snap, err := q.snapshot()
	require.NoError(t, err)

	assert.Len(t, snap.candidates(addrA, 1), 2, "only pools holding A")
	assert.Len(t, snap.candidates(addrA, 2), 3)
	assert.Empty(t, snap.candidates(addrD, 3))
}
