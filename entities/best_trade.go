package entities

import (
	"errors"
	"fmt"
	"slices"

	"github.com/defistate/uniswapv2-sdk-go/bitset"
)

const (
	DefaultMaxNumResults = 3
	DefaultMaxHops       = 3
)

// BestTradeOptions bounds the route search.
type BestTradeOptions struct {
	// MaxNumResults caps the number of trades returned. Zero means 3.
	MaxNumResults int
	// MaxHops caps the pairs per route. Zero means 3.
	MaxHops int
}

func (o BestTradeOptions) withDefaults() BestTradeOptions {
	if o.MaxNumResults <= 0 {
		o.MaxNumResults = DefaultMaxNumResults
	}
	if o.MaxHops <= 0 {
		o.MaxHops = DefaultMaxHops
	}
	return o
}

// compareTrades orders trades best first: more output, then less input, then
// lower price impact, then fewer hops. Trades must share input and output tokens.
func compareTrades(a, b *Trade) int {
	if c := b.outputAmount.value().Cmp(a.outputAmount.value()); c != 0 {
		return c
	}
	if c := a.inputAmount.value().Cmp(b.inputAmount.value()); c != 0 {
		return c
	}
	if c := a.priceImpact.Cmp(b.priceImpact); c != 0 {
		return c
	}
	return len(a.route.pairs) - len(b.route.pairs)
}

// insertTrade keeps trades sorted and no longer than maxSize.
func insertTrade(trades []*Trade, t *Trade, maxSize int) []*Trade {
	i, _ := slices.BinarySearchFunc(trades, t, func(e, target *Trade) int {
		// place after equal elements so earlier discoveries win ties
		if c := compareTrades(e, target); c != 0 {
			return c
		}
		return -1
	})
	if i >= maxSize {
		return trades
	}
	trades = slices.Insert(trades, i, t)
	if len(trades) > maxSize {
		trades = trades[:maxSize]
	}
	return trades
}

func isSkippableSwapError(err error) bool {
	return errors.Is(err, ErrInsufficientReserves) ||
		errors.Is(err, ErrInsufficientOutputAmount) ||
		errors.Is(err, ErrInsufficientLiquidity)
}

// BestTradeExactIn searches every route of at most MaxHops pairs from
// amountIn's token to tokenOut and returns the best exact-input trades.
// Pairs that cannot absorb the amount are skipped.
func BestTradeExactIn(pairs []*Pair, amountIn CurrencyAmount, tokenOut *Token, opts BestTradeOptions) ([]*Trade, error) {
	opts = opts.withDefaults()
	if amountIn.token.Equals(tokenOut) {
		return nil, fmt.Errorf("%w: %s", ErrIdenticalAddress, tokenOut)
	}
	s := newBestTradeSearch(pairs, opts, amountIn)
	s.tokenOut = tokenOut
	if err := s.exactIn(amountIn, nil, opts.MaxHops); err != nil {
		return nil, err
	}
	return s.results, nil
}

// BestTradeExactOut is the exact-output counterpart of BestTradeExactIn,
// searching backwards from amountOut's token to tokenIn.
func BestTradeExactOut(pairs []*Pair, tokenIn *Token, amountOut CurrencyAmount, opts BestTradeOptions) ([]*Trade, error) {
	opts = opts.withDefaults()
	if amountOut.token.Equals(tokenIn) {
		return nil, fmt.Errorf("%w: %s", ErrIdenticalAddress, tokenIn)
	}
	s := newBestTradeSearch(pairs, opts, amountOut)
	s.tokenIn = tokenIn
	if err := s.exactOut(amountOut, nil, opts.MaxHops); err != nil {
		return nil, err
	}
	return s.results, nil
}

type bestTradeSearch struct {
	opts     BestTradeOptions
	pairs    []*Pair
	used     bitset.BitSet
	tokenIn  *Token
	tokenOut *Token
	original CurrencyAmount
	results  []*Trade
}

func newBestTradeSearch(pairs []*Pair, opts BestTradeOptions, original CurrencyAmount) *bestTradeSearch {
	return &bestTradeSearch{
		opts:     opts,
		pairs:    pairs,
		used:     bitset.New(len(pairs)),
		original: original,
	}
}

// canExtend reports whether a route of length depth may take one more pair
// and still leave one unused.
func (s *bestTradeSearch) canExtend(depth, hopsLeft int) bool {
	return hopsLeft > 1 && len(s.pairs)-depth > 1
}

func (s *bestTradeSearch) exactIn(amountIn CurrencyAmount, current []*Pair, hopsLeft int) error {
	for i, pair := range s.pairs {
		if s.used.IsSet(i) || !pair.InvolvesToken(amountIn.token) {
			continue
		}
		out, _, err := pair.GetOutputAmount(amountIn)
		if err != nil {
			if isSkippableSwapError(err) {
				continue
			}
			return err
		}

		if out.token.Equals(s.tokenOut) {
			route, err := NewRoute(append(slices.Clone(current), pair), s.original.token, s.tokenOut)
			if err != nil {
				return err
			}
			trade, err := ExactIn(route, s.original)
			if err != nil {
				return err
			}
			s.results = insertTrade(s.results, trade, s.opts.MaxNumResults)
		} else if s.canExtend(len(current), hopsLeft) {
			s.used.Set(i)
			err := s.exactIn(out, append(slices.Clone(current), pair), hopsLeft-1)
			s.used.Unset(i)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *bestTradeSearch) exactOut(amountOut CurrencyAmount, current []*Pair, hopsLeft int) error {
	for i, pair := range s.pairs {
		if s.used.IsSet(i) || !pair.InvolvesToken(amountOut.token) {
			continue
		}
		in, _, err := pair.GetInputAmount(amountOut)
		if err != nil {
			if isSkippableSwapError(err) {
				continue
			}
			return err
		}

		if in.token.Equals(s.tokenIn) {
			route, err := NewRoute(append([]*Pair{pair}, current...), s.tokenIn, s.original.token)
			if err != nil {
				return err
			}
			trade, err := ExactOut(route, s.original)
			if err != nil {
				return err
			}
			s.results = insertTrade(s.results, trade, s.opts.MaxNumResults)
		} else if s.canExtend(len(current), hopsLeft) {
			s.used.Set(i)
			err := s.exactOut(in, append([]*Pair{pair}, current...), hopsLeft-1)
			s.used.Unset(i)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
