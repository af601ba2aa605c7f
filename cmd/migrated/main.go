// Command migrated runs the balance migration HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/cache"
	"github.com/iov-one/migrate/config"
	"github.com/iov-one/migrate/ledger/horizon"
	"github.com/iov-one/migrate/metrics"
	"github.com/iov-one/migrate/migration"
	"github.com/iov-one/migrate/notify"
	"github.com/iov-one/migrate/rediskv"
	"github.com/iov-one/migrate/server"
)

const (
	lockTTL       = 2 * time.Minute
	shutdownGrace = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrated: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	conf, err := config.FromEnv()
	if err != nil {
		return err
	}

	log, err := newLogger(conf.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	opts, err := redis.ParseURL(conf.RedisConn)
	if err != nil {
		return err
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	funding, err := keypair.ParseFull(conf.MainSeed)
	if err != nil {
		return err
	}
	channels, err := horizon.NewChannelPool(conf.MainSeed, conf.ChannelSalt, conf.ChannelCount)
	if err != nil {
		return err
	}

	oldClient := &horizonclient.Client{HorizonURL: conf.OldHorizon}
	newClient := &horizonclient.Client{HorizonURL: conf.NewHorizon}

	old := horizon.NewOldLedger(oldClient)
	ledger := horizon.NewNewLedger(newClient, funding, channels, conf.NewPassphrase, txnbuild.MinBaseFee, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	set := metrics.NewSet(reg)

	var notifier migration.Notifier
	if conf.InternalService != "" {
		notifier = notify.NewInternalService(nil, conf.InternalService, log)
	}

	asset := migrate.Asset{
		Code:   conf.AssetCode,
		Issuer: conf.AssetIssuer,
	}
	idem := cache.NewIdempotency(rediskv.NewStore(rdb))
	locker := rediskv.NewLock(rdb, conf.LockTimeout, lockTTL)
	verifier := migration.NewVerifier(old, idem, asset, log)
	svc := migration.NewService(verifier, ledger, idem, locker, set, notifier, log)

	srv := server.NewServer(svc, ledger, asset, set, reg, log, conf.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting",
		zap.String("listen", conf.ListenAddr),
		zap.String("funding", funding.Address()),
		zap.Int("channels", conf.ChannelCount))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, conf.ListenAddr, shutdownGrace)
	})
	return g.Wait()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
