package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/the-lightning-land/resurrection/credential"
	"github.com/the-lightning-land/resurrection/fiat"
	"github.com/the-lightning-land/resurrection/phoenixd"
)

const (
	defaultListen = "127.0.0.1:9741"
	appName       = "resurrection"
)

type phoenixdConfig struct {
	Host     string `long:"host" description:"Host phoenixd listens on"`
	Port     int    `long:"port" description:"Port of the phoenixd HTTP API"`
	Conf     string `long:"conf" description:"Path to phoenix.conf holding the http password"`
	Password string `long:"password" description:"Use this http password instead of reading phoenix.conf"`
}

type fiatConfig struct {
	Currencies []string      `long:"currencies" description:"Fiat currency to track, may be repeated or comma separated"`
	TTL        time.Duration `long:"ttl" description:"How long a fetched rate is considered fresh"`
	Exchange   string        `long:"exchange" description:"Exchange to read rates from"`
}

type config struct {
	ShowVersion bool            `short:"V" long:"version" description:"Display version information and exit"`
	Debug       bool            `long:"debug" description:"Start in debug mode"`
	DataDir     string          `long:"datadir" description:"The directory to store the wallet database in"`
	LogFile     string          `long:"logfile" description:"Also write logs to this file, rotated as it grows"`
	Listen      string          `long:"listen" description:"Address the local API listens on"`
	Phoenixd    *phoenixdConfig `group:"phoenixd" namespace:"phoenixd"`
	Fiat        *fiatConfig     `group:"fiat" namespace:"fiat"`
}

func defaultConfig() config {
	return config{
		DataDir: filepath.Join(xdg.DataHome, appName),
		Listen:  defaultListen,
		Phoenixd: &phoenixdConfig{
			Host: phoenixd.DefaultHost,
			Port: phoenixd.DefaultPort,
			Conf: credential.DefaultPath(),
		},
		Fiat: &fiatConfig{
			Currencies: fiat.DefaultCodes(),
			TTL:        fiat.DefaultTTL,
			Exchange:   fiat.DefaultExchange,
		},
	}
}

// loadConfig parses the command line on top of the defaults.
func loadConfig(args []string) (*config, error) {
	cfg := defaultConfig()

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	codes, err := parseCurrencies(cfg.Fiat.Currencies)
	if err != nil {
		return nil, err
	}

	cfg.Fiat.Currencies = codes

	if cfg.Fiat.TTL <= 0 {
		return nil, errors.Errorf("fiat.ttl must be positive, got %v", cfg.Fiat.TTL)
	}

	if cfg.DataDir == "" {
		return nil, errors.New("datadir must not be empty")
	}

	return &cfg, nil
}

func parseCurrencies(values []string) ([]string, error) {
	var codes []string
	seen := make(map[string]bool)

	for _, value := range values {
		for _, code := range strings.Split(value, ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code == "" || seen[code] {
				continue
			}

			if !fiat.Supported(code) {
				return nil, errors.Errorf("unsupported fiat currency %v", code)
			}

			seen[code] = true
			codes = append(codes, code)
		}
	}

	if len(codes) == 0 {
		return nil, errors.New("at least one fiat currency is required")
	}

	return codes, nil
}
