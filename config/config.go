// Package config loads remitd's configuration from an optional YAML file
// with environment overrides. Signing seeds are environment-only: they are
// never read from the file and never written to logs.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/ShyamalV18/Migrasend-mvp/domain"
	"github.com/ShyamalV18/Migrasend-mvp/remit"
)

// AccountConfig identifies one party. The address comes from file or env;
// the seed only from env.
type AccountConfig struct {
	Address string `yaml:"address"`
	Seed    string `yaml:"-"`
}

// Config holds everything remitd needs.
type Config struct {
	ListenAddr          string        `yaml:"listen_addr"`
	RPCEndpoint         string        `yaml:"rpc_endpoint"`
	Currency            string        `yaml:"currency"`
	TrustLimit          string        `yaml:"trust_limit"`
	CollateralDrops     uint64        `yaml:"collateral_drops"`
	ReleaseDelaySeconds int           `yaml:"release_delay_seconds"`
	Sender              AccountConfig `yaml:"sender"`
	Receiver            AccountConfig `yaml:"receiver"`
}

func defaults() *Config {
	return &Config{
		ListenAddr:          ":8080",
		RPCEndpoint:         "https://s.altnet.rippletest.net:51234/",
		Currency:            "USD",
		TrustLimit:          "10000",
		CollateralDrops:     1_000_000,
		ReleaseDelaySeconds: 10,
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides on top, and validates that both accounts are fully
// specified.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.ListenAddr = getEnv("REMIT_LISTEN_ADDR", cfg.ListenAddr)
	cfg.RPCEndpoint = getEnv("REMIT_RPC_ENDPOINT", cfg.RPCEndpoint)
	cfg.Currency = getEnv("REMIT_CURRENCY", cfg.Currency)
	cfg.Sender.Address = getEnv("REMIT_SENDER_ADDRESS", cfg.Sender.Address)
	cfg.Receiver.Address = getEnv("REMIT_RECEIVER_ADDRESS", cfg.Receiver.Address)
	cfg.Sender.Seed = os.Getenv("REMIT_SENDER_SEED")
	cfg.Receiver.Seed = os.Getenv("REMIT_RECEIVER_SEED")

	if cfg.Sender.Address == "" || cfg.Receiver.Address == "" {
		return nil, fmt.Errorf("sender and receiver addresses are required (config file or REMIT_SENDER_ADDRESS / REMIT_RECEIVER_ADDRESS)")
	}
	if cfg.Sender.Seed == "" || cfg.Receiver.Seed == "" {
		return nil, fmt.Errorf("signing seeds are required via REMIT_SENDER_SEED and REMIT_RECEIVER_SEED")
	}
	return cfg, nil
}

// Policy converts the configured remittance parameters into a workflow
// policy.
func (c *Config) Policy() (remit.Policy, error) {
	limit, err := decimal.NewFromString(c.TrustLimit)
	if err != nil {
		return remit.Policy{}, fmt.Errorf("parse trust_limit %q: %w", c.TrustLimit, err)
	}
	return remit.Policy{
		Currency:        c.Currency,
		TrustLimit:      limit,
		CollateralDrops: c.CollateralDrops,
		ReleaseDelay:    time.Duration(c.ReleaseDelaySeconds) * time.Second,
	}, nil
}

// SenderAccount returns the configured sender/issuer identity.
func (c *Config) SenderAccount() domain.Account {
	return domain.Account{Address: c.Sender.Address, Seed: c.Sender.Seed, Role: domain.RoleSender}
}

// ReceiverAccount returns the configured receiver identity.
func (c *Config) ReceiverAccount() domain.Account {
	return domain.Account{Address: c.Receiver.Address, Seed: c.Receiver.Seed, Role: domain.RoleReceiver}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
