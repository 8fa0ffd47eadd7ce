// Package config loads the lending engine's bootstrap configuration: the
// admin key, genesis reward rates, and the set of markets to register at
// startup.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"whirlpool/crypto"
	"whirlpool/engine"
	"whirlpool/interest"
	"whirlpool/market"
	"whirlpool/observability/logging"
	"whirlpool/oracle"
	"whirlpool/reward"
)

// adminPassEnv names the environment variable Bootstrap reads the admin
// keystore passphrase from.
const adminPassEnv = "WHIRLPOOL_ADMIN_PASS"

// MarketSeed is one market's genesis parameters, decoded from the
// [[Markets]] table array in the config file.
type MarketSeed struct {
	Key                   string `toml:"Key"`
	BorrowCap             uint64 `toml:"BorrowCap"`
	CollateralCap         uint64 `toml:"CollateralCap"`
	LTV                   uint64 `toml:"LTV"`
	AllocationPoints      uint64 `toml:"AllocationPoints"`
	PenaltyFee            uint64 `toml:"PenaltyFee"`
	ProtocolPercentage    uint64 `toml:"ProtocolPercentage"`
	Decimals              uint64 `toml:"Decimals"`
	BasePerTick           uint64 `toml:"BasePerTick"`
	MultiplierPerTick     uint64 `toml:"MultiplierPerTick"`
	JumpMultiplierPerTick uint64 `toml:"JumpMultiplierPerTick"`
	Kink                  uint64 `toml:"Kink"`
}

// Config is the lending engine's bootstrap configuration. It deliberately
// carries no listen/RPC/data-directory fields: the engine is a library, not
// a network service.
type Config struct {
	AdminKey               string       `toml:"AdminKey"`
	AdminKeystorePath      string       `toml:"AdminKeystorePath"`
	InitialReserveFactor   uint64       `toml:"InitialReserveFactor"`
	InitialRewardsPerTick  uint64       `toml:"InitialRewardsPerTick"`
	DNRInterestRatePerTick uint64       `toml:"DNRInterestRatePerTick"`
	Markets                []MarketSeed `toml:"Markets"`
}

// Load reads cfg from path, generating and persisting a default (with a
// freshly generated admin key) if the file does not yet exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.AdminKey == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		cfg.AdminKey = hex.EncodeToString(key.Bytes())

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, os.ModePerm)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// AdminPrivateKey resolves the admin key. When AdminKeystorePath is set the
// key is decrypted from that Ethereum v3 keystore file using the passphrase
// in the WHIRLPOOL_ADMIN_PASS environment variable; otherwise the plain
// AdminKey hex field is decoded.
func (c *Config) AdminPrivateKey() (*crypto.PrivateKey, error) {
	if c.AdminKeystorePath != "" {
		passphrase := os.Getenv(adminPassEnv)
		if strings.TrimSpace(passphrase) == "" {
			return nil, fmt.Errorf("config: %s must be set to unlock %s", adminPassEnv, c.AdminKeystorePath)
		}
		return crypto.LoadFromKeystore(c.AdminKeystorePath, passphrase)
	}
	b, err := hex.DecodeString(c.AdminKey)
	if err != nil {
		return nil, err
	}
	return crypto.PrivateKeyFromBytes(b)
}

// Bootstrap constructs an Engine wired to the supplied collaborators and
// registers every market in c.Markets under the resolved admin key. It also
// establishes the service-wide structured logger and routes it onto the
// engine via SetLogger instead of leaving the engine on its own default.
func (c *Config) Bootstrap(ora oracle.Oracle, ipx reward.IPXMinter, dnrToken reward.DNRToken) (*engine.Engine, error) {
	logger := logging.Setup("whirlpool-lending", os.Getenv("WHIRLPOOL_ENV"))

	adminKey, err := c.AdminPrivateKey()
	if err != nil {
		return nil, err
	}
	admin := adminKey.PubKey().Address()
	logger.Info("admin key resolved", logging.MaskField("admin_key", c.AdminKey), "admin_address", admin.String())

	eng := engine.New(admin, ora, ipx, dnrToken, engine.Config{
		InitialReserveFactor:  c.InitialReserveFactor,
		InitialRewardsPerTick: c.InitialRewardsPerTick,
	})
	eng.SetLogger(logger)
	if c.DNRInterestRatePerTick != 0 {
		dnrToken.SetInterestRatePerTick(c.DNRInterestRatePerTick)
	}

	for _, seed := range c.Markets {
		model := interest.Model{
			BasePerTick:           seed.BasePerTick,
			MultiplierPerTick:     seed.MultiplierPerTick,
			JumpMultiplierPerTick: seed.JumpMultiplierPerTick,
			Kink:                  seed.Kink,
		}
		err := eng.CreateMarket(
			admin,
			market.Key(seed.Key),
			seed.BorrowCap,
			seed.CollateralCap,
			seed.LTV,
			seed.AllocationPoints,
			seed.PenaltyFee,
			seed.ProtocolPercentage,
			seed.Decimals,
			model,
		)
		if err != nil {
			return nil, err
		}
	}
	return eng, nil
}

func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AdminKey:               hex.EncodeToString(key.Bytes()),
		InitialReserveFactor:   200_000_000,        // 0.2 * MANTISSA
		InitialRewardsPerTick:  10_000_000_000_000, // 100 * 10^11
		DNRInterestRatePerTick: 0,
		Markets:                []MarketSeed{},
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
