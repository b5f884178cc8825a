package main

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/resurrection/api"
	"github.com/the-lightning-land/resurrection/credential"
	"github.com/the-lightning-land/resurrection/fiat"
	"github.com/the-lightning-land/resurrection/phoenixd"
	"github.com/the-lightning-land/resurrection/walletdb"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// resurrectiondMain is the true entry point for resurrectiond. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func resurrectiondMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig(os.Args[1:])
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	if cfg.LogFile != "" {
		logFile := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxAge:     3,
			MaxBackups: 3,
		}

		defer logFile.Close()

		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	// wallet.db persistently stores the wallet setup
	walletDB, err := walletdb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open wallet.db: %v", err)
	}

	log.Infof("Opened wallet.db in %v", cfg.DataDir)

	defer func() {
		err := walletDB.Close()
		if err != nil {
			log.Errorf("Could not close wallet.db: %v", err)
		} else {
			log.Info("Closed wallet.db.")
		}
	}()

	// The http password is either given or read from phoenix.conf on demand
	var credentials phoenixd.CredentialResolver

	if cfg.Phoenixd.Password != "" {
		credentials = credential.Static(cfg.Phoenixd.Password)

		log.Info("Using the http password given on the command line.")
	} else {
		credentials = credential.NewResolver(&credential.Config{
			Path:   cfg.Phoenixd.Conf,
			Logger: subsystem("credential"),
		})

		log.Infof("Reading the http password from %v.", cfg.Phoenixd.Conf)
	}

	node := phoenixd.NewClient(&phoenixd.Config{
		Host:        cfg.Phoenixd.Host,
		Port:        cfg.Phoenixd.Port,
		Credentials: credentials,
		Logger:      subsystem("phoenixd"),
	})

	log.Infof("Created phoenixd client for %v:%v.", cfg.Phoenixd.Host, cfg.Phoenixd.Port)

	rates := fiat.NewCache(&fiat.CacheConfig{
		Source: fiat.NewKrakenSource(&fiat.KrakenConfig{
			Logger: subsystem("kraken"),
		}),
		Currencies: cfg.Fiat.Currencies,
		TTL:        cfg.Fiat.TTL,
		Exchange:   cfg.Fiat.Exchange,
		Logger:     subsystem("fiat"),
	})

	log.Infof("Created fiat rate cache for %v.", cfg.Fiat.Currencies)

	a := api.New(&api.Config{
		Node:  node,
		Rates: rates,
		DB:    walletDB,
		Log:   subsystem("api"),
	})

	log.Infof("Created API")

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Errorf("Could not listen on %v: %v", cfg.Listen, err)
	}

	defer listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relayDone := make(chan struct{})

	go func() {
		defer close(relayDone)
		a.Run(ctx)
	}()

	serveErr := make(chan error, 1)

	go func() {
		log.Infof("Serving API on %v", listener.Addr())
		serveErr <- a.Serve(listener)
	}()

	// Handle interrupt signals correctly
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signals:
		log.Info(sig)
		log.Info("Received an interrupt, stopping resurrectiond...")
	case err := <-serveErr:
		cancel()
		<-relayDone
		return errors.Errorf("Failed serving API: %v", err)
	}

	cancel()
	<-relayDone

	// finish with no error
	return nil
}

// subsystem returns a logger for one part of the daemon, sharing the output
// and level of the standard logger.
func subsystem(name string) *log.Entry {
	return log.StandardLogger().WithField("system", name)
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := resurrectiondMain(); err != nil {
		log.WithError(err).Println("Failed running resurrectiond.")
		os.Exit(1)
	}
}
