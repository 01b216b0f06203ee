// Package config loads the quote command's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/defistate/uniswapv2-sdk-go/protocols/tokenregistry"
	"github.com/defistate/uniswapv2-sdk-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRefreshInterval = 12 * time.Second
	DefaultConcurrency     = 8
)

var (
	ErrMissingChainID = errors.New("chain_id is required")
	ErrNoTokens       = errors.New("at least one token is required")
	ErrNoPools        = errors.New("at least one pool is required")
	ErrUnknownToken   = errors.New("token not configured")
)

// Config is the root of the configuration file.
type Config struct {
	ChainID         uint64        `yaml:"chain_id"`
	RPCURL          string        `yaml:"rpc_url"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Concurrency     int           `yaml:"concurrency"`
	MetricsAddr     string        `yaml:"metrics_addr"`
	Search          SearchConfig  `yaml:"search"`
	Tokens          []TokenConfig `yaml:"tokens"`
	Pools           []PoolConfig  `yaml:"pools"`
}

// SearchConfig bounds the best-trade search. Zero values use the search defaults.
type SearchConfig struct {
	MaxHops    int `yaml:"max_hops"`
	MaxResults int `yaml:"max_results"`
}

type TokenConfig struct {
	Address  string `yaml:"address"`
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Decimals uint8  `yaml:"decimals"`
}

// PoolConfig names a pair contract. Token and reserve fields are only read
// when no rpc_url is configured; otherwise the pool is read from chain.
type PoolConfig struct {
	Address  string `yaml:"address"`
	Token0   string `yaml:"token0"`
	Token1   string `yaml:"token1"`
	Reserve0 string `yaml:"reserve0"`
	Reserve1 string `yaml:"reserve1"`
}

// LoadConfig reads and validates the file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ChainID == 0 {
		return ErrMissingChainID
	}
	if len(c.Tokens) == 0 {
		return ErrNoTokens
	}
	if len(c.Pools) == 0 {
		return ErrNoPools
	}
	for i, t := range c.Tokens {
		if !common.IsHexAddress(t.Address) {
			return fmt.Errorf("tokens[%d]: invalid address %q", i, t.Address)
		}
		if t.Symbol == "" {
			return fmt.Errorf("tokens[%d]: symbol is required", i)
		}
	}
	for i, p := range c.Pools {
		if !common.IsHexAddress(p.Address) {
			return fmt.Errorf("pools[%d]: invalid address %q", i, p.Address)
		}
		if c.RPCURL != "" {
			continue
		}
		if _, err := p.pool(); err != nil {
			return fmt.Errorf("pools[%d]: %w", i, err)
		}
	}
	return nil
}

// RegistryTokens converts the configured tokens into registry descriptors.
func (c *Config) RegistryTokens() []tokenregistry.Token {
	tokens := make([]tokenregistry.Token, len(c.Tokens))
	for i, t := range c.Tokens {
		tokens[i] = tokenregistry.Token{
			ChainID:  c.ChainID,
			Address:  common.HexToAddress(t.Address),
			Name:     t.Name,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		}
	}
	return tokens
}

// PoolAddresses lists the configured pair contracts.
func (c *Config) PoolAddresses() []common.Address {
	addresses := make([]common.Address, len(c.Pools))
	for i, p := range c.Pools {
		addresses[i] = common.HexToAddress(p.Address)
	}
	return addresses
}

// StaticPools returns the pools with their configured reserves.
func (c *Config) StaticPools() ([]uniswapv2.Pool, error) {
	pools := make([]uniswapv2.Pool, len(c.Pools))
	for i, p := range c.Pools {
		pool, err := p.pool()
		if err != nil {
			return nil, fmt.Errorf("pools[%d]: %w", i, err)
		}
		pools[i] = pool
	}
	return pools, nil
}

// ResolveToken accepts a configured symbol (case-insensitive) or a hex address.
func (c *Config) ResolveToken(s string) (common.Address, error) {
	for _, t := range c.Tokens {
		if strings.EqualFold(t.Symbol, s) || strings.EqualFold(t.Address, s) {
			return common.HexToAddress(t.Address), nil
		}
	}
	if common.IsHexAddress(s) {
		return common.HexToAddress(s), nil
	}
	return common.Address{}, fmt.Errorf("%w: %q", ErrUnknownToken, s)
}

func (p PoolConfig) pool() (uniswapv2.Pool, error) {
	if !common.IsHexAddress(p.Token0) || !common.IsHexAddress(p.Token1) {
		return uniswapv2.Pool{}, errors.New("token0 and token1 must be addresses when no rpc_url is set")
	}
	r0, ok := new(big.Int).SetString(p.Reserve0, 10)
	if !ok {
		return uniswapv2.Pool{}, fmt.Errorf("invalid reserve0 %q", p.Reserve0)
	}
	r1, ok := new(big.Int).SetString(p.Reserve1, 10)
	if !ok {
		return uniswapv2.Pool{}, fmt.Errorf("invalid reserve1 %q", p.Reserve1)
	}
	pool := uniswapv2.Pool{
		Address:  common.HexToAddress(p.Address),
		Token0:   common.HexToAddress(p.Token0),
		Token1:   common.HexToAddress(p.Token1),
		Reserve0: r0,
		Reserve1: r1,
	}
	if err := pool.Validate(); err != nil {
		return uniswapv2.Pool{}, err
	}
	return pool, nil
}
