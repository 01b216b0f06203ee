package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/defistate/uniswapv2-sdk-go/chains/ethereum"
	"github.com/defistate/uniswapv2-sdk-go/cmd/quote/config"
	"github.com/defistate/uniswapv2-sdk-go/entities"
	"github.com/defistate/uniswapv2-sdk-go/numeric"
	"github.com/defistate/uniswapv2-sdk-go/quoter"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

type flags struct {
	configPath  string
	tokenIn     string
	tokenOut    string
	amount      string
	exactOut    bool
	slippageBps int64
	watch       bool
	logLevel    string
}

func parseFlags() flags {
	var f flags
	pflag.StringVarP(&f.configPath, "config", "c", "config.yaml", "path to the configuration file")
	pflag.StringVarP(&f.tokenIn, "in", "i", "", "input token symbol or address")
	pflag.StringVarP(&f.tokenOut, "out", "o", "", "output token symbol or address")
	pflag.StringVarP(&f.amount, "amount", "a", "1", "amount in whole-token units (input, or output with --exact-out)")
	pflag.BoolVar(&f.exactOut, "exact-out", false, "quote a fixed output amount instead of a fixed input")
	pflag.Int64Var(&f.slippageBps, "slippage-bps", 50, "slippage tolerance in basis points")
	pflag.BoolVarP(&f.watch, "watch", "w", false, "keep refreshing reserves and re-quoting (requires rpc_url)")
	pflag.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pflag.Parse()
	return f
}

func main() {
	f := parseFlags()

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	rootLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, rootLogger, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		rootLogger.Error("Quote failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, logger *slog.Logger, out io.Writer) error {
	if f.tokenIn == "" || f.tokenOut == "" {
		return errors.New("--in and --out are required")
	}
	slippage, err := numeric.NewPercentFraction(big.NewInt(f.slippageBps), big.NewInt(10_000))
	if err != nil {
		return err
	}

	logger.Info("Loading configuration", "path", f.configPath)
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return err
	}

	tokenIn, err := cfg.ResolveToken(f.tokenIn)
	if err != nil {
		return err
	}
	tokenOut, err := cfg.ResolveToken(f.tokenOut)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, registry, logger)
	}

	q, err := quoter.New(&quoter.Config{
		ChainID:  cfg.ChainID,
		Logger:   logger.With("component", "quoter"),
		Registry: registry,
		Search: entities.BestTradeOptions{
			MaxHops:       cfg.Search.MaxHops,
			MaxNumResults: cfg.Search.MaxResults,
		},
	})
	if err != nil {
		return err
	}

	var reader *ethereum.Reader
	if cfg.RPCURL != "" {
		reader, err = ethereum.Dial(ctx, cfg.RPCURL, logger.With("component", "reserve-reader"), ethereum.WithConcurrency(cfg.Concurrency))
		if err != nil {
			return err
		}
		defer reader.Close()

		block, pools, err := reader.ReadPools(ctx, cfg.PoolAddresses())
		if err != nil {
			return err
		}
		if err := q.Update(block, cfg.RegistryTokens(), pools); err != nil {
			return err
		}
	} else {
		pools, err := cfg.StaticPools()
		if err != nil {
			return err
		}
		if err := q.Update(0, cfg.RegistryTokens(), pools); err != nil {
			return err
		}
	}

	quoteOnce := func() error {
		quote, err := doQuote(q, f, tokenInOut{tokenIn, tokenOut})
		if err != nil {
			return err
		}
		return printQuote(out, quote, slippage)
	}

	if err := quoteOnce(); err != nil {
		return err
	}
	if !f.watch {
		return nil
	}
	if reader == nil {
		return errors.New("--watch requires rpc_url in the configuration")
	}

	go func() {
		if err := q.Run(ctx, reader, cfg.RefreshInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Refresh loop stopped", "error", err)
		}
	}()

	lastBlock, _ := q.Block()
	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			block, _ := q.Block()
			if block == lastBlock {
				continue
			}
			lastBlock = block
			if err := quoteOnce(); err != nil {
				logger.Warn("Quote failed", "block", block, "error", err)
			}
		}
	}
}

type tokenInOut struct {
	in, out common.Address
}

func doQuote(q *quoter.Quoter, f flags, pair tokenInOut) (quoter.Quote, error) {
	if f.exactOut {
		token, err := q.Token(pair.out)
		if err != nil {
			return quoter.Quote{}, err
		}
		amount, err := entities.FromDecimal(token, f.amount)
		if err != nil {
			return quoter.Quote{}, err
		}
		return q.QuoteExactOut(pair.in, pair.out, amount.Raw())
	}

	token, err := q.Token(pair.in)
	if err != nil {
		return quoter.Quote{}, err
	}
	amount, err := entities.FromDecimal(token, f.amount)
	if err != nil {
		return quoter.Quote{}, err
	}
	return q.QuoteExactIn(pair.in, pair.out, amount.Raw())
}

func printQuote(out io.Writer, quote quoter.Quote, slippage numeric.Percent) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "block %d\n", quote.Block)
	fmt.Fprintln(w, "#\tROUTE\tIN\tOUT\tPRICE\tIMPACT\tLIMIT")
	for i, trade := range quote.Trades {
		price, err := trade.ExecutionPrice().ToSignificant(6)
		if err != nil {
			return err
		}
		limit, err := tradeLimit(trade, slippage)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			trade.Route(),
			trade.InputAmount().ToExact(entities.DefaultExactPrecision),
			trade.OutputAmount().ToExact(entities.DefaultExactPrecision),
			price,
			trade.PriceImpact(),
			limit,
		)
	}
	return w.Flush()
}

func tradeLimit(trade *entities.Trade, slippage numeric.Percent) (string, error) {
	if trade.TradeType() == entities.ExactOutput {
		maxIn, err := trade.MaximumAmountIn(slippage)
		if err != nil {
			return "", err
		}
		return "max in " + maxIn.ToExact(entities.DefaultExactPrecision), nil
	}
	minOut, err := trade.MinimumAmountOut(slippage)
	if err != nil {
		return "", err
	}
	return "min out " + minOut.ToExact(entities.DefaultExactPrecision), nil
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", "error", err)
	}
}
