// Package config loads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/stellar/go/strkey"

	"github.com/iov-one/migrate/errors"
)

// Config carries every runtime setting of the service. All values come
// from the environment, secrets included, so a deployment is fully
// described by its environment.
type Config struct {
	// OldHorizon and NewHorizon are the base URLs of the two ledger
	// APIs.
	OldHorizon string
	NewHorizon string

	// NewPassphrase is the network passphrase transactions on the new
	// ledger are signed for.
	NewPassphrase string

	// MainSeed is the secret seed of the funding account.
	MainSeed string

	// ChannelCount submission channels are derived from MainSeed and
	// ChannelSalt.
	ChannelCount int
	ChannelSalt  string

	// AssetCode and AssetIssuer designate the asset whose balance is
	// migrated.
	AssetCode   string
	AssetIssuer string

	// RedisConn is a redis URL, for example redis://localhost:6379/0.
	RedisConn string

	ListenAddr      string
	LockTimeout     time.Duration
	InternalService string
	Debug           bool
}

const (
	defaultListenAddr  = ":8000"
	defaultAssetCode   = "KIN"
	defaultChannels    = 100
	defaultLockTimeout = 30 * time.Second
)

// FromEnv builds a Config from the process environment, falling back to
// defaults for the optional settings.
func FromEnv() (Config, error) {
	c := Config{
		OldHorizon:      os.Getenv("MIGRATE_OLD_HORIZON"),
		NewHorizon:      os.Getenv("MIGRATE_NEW_HORIZON"),
		NewPassphrase:   os.Getenv("MIGRATE_NEW_PASSPHRASE"),
		MainSeed:        os.Getenv("MIGRATE_MAIN_SEED"),
		ChannelSalt:     os.Getenv("MIGRATE_CHANNEL_SALT"),
		AssetCode:       envDefault("MIGRATE_ASSET_CODE", defaultAssetCode),
		AssetIssuer:     os.Getenv("MIGRATE_ASSET_ISSUER"),
		RedisConn:       os.Getenv("MIGRATE_REDIS_CONN"),
		ListenAddr:      envDefault("MIGRATE_LISTEN_ADDR", defaultListenAddr),
		InternalService: os.Getenv("MIGRATE_INTERNAL_SERVICE"),
		ChannelCount:    defaultChannels,
		LockTimeout:     defaultLockTimeout,
	}
	if raw := os.Getenv("MIGRATE_CHANNEL_COUNT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c, errors.Wrap(err, "MIGRATE_CHANNEL_COUNT")
		}
		c.ChannelCount = n
	}
	if raw := os.Getenv("MIGRATE_LOCK_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return c, errors.Wrap(err, "MIGRATE_LOCK_TIMEOUT")
		}
		c.LockTimeout = d
	}
	if raw := os.Getenv("MIGRATE_DEBUG"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return c, errors.Wrap(err, "MIGRATE_DEBUG")
		}
		c.Debug = b
	}
	return c, c.Validate()
}

// Validate returns an error if the configuration cannot run the
// service. Optional settings are not checked.
func (c Config) Validate() error {
	switch {
	case c.OldHorizon == "":
		return errors.Wrap(errors.ErrEmpty, "old horizon URL")
	case c.NewHorizon == "":
		return errors.Wrap(errors.ErrEmpty, "new horizon URL")
	case c.NewPassphrase == "":
		return errors.Wrap(errors.ErrEmpty, "network passphrase")
	case c.RedisConn == "":
		return errors.Wrap(errors.ErrEmpty, "redis connection")
	case c.AssetIssuer == "":
		return errors.Wrap(errors.ErrEmpty, "asset issuer")
	}
	if !strkey.IsValidEd25519SecretSeed(c.MainSeed) {
		return errors.Wrap(errors.ErrState, "main seed is not a valid secret seed")
	}
	if !strkey.IsValidEd25519PublicKey(c.AssetIssuer) {
		return errors.Wrap(errors.ErrInvalidAddress, "asset issuer")
	}
	if c.ChannelCount < 1 {
		return errors.Wrap(errors.ErrState, "channel count must be positive")
	}
	if c.LockTimeout <= 0 {
		return errors.Wrap(errors.ErrState, "lock timeout must be positive")
	}
	return nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
