package main

import (
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/resurrection/fiat"
	"github.com/the-lightning-land/resurrection/phoenixd"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, defaultListen, cfg.Listen)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, phoenixd.DefaultHost, cfg.Phoenixd.Host)
	assert.Equal(t, phoenixd.DefaultPort, cfg.Phoenixd.Port)
	assert.Equal(t, fiat.DefaultCodes(), cfg.Fiat.Currencies)
	assert.Equal(t, fiat.DefaultTTL, cfg.Fiat.TTL)
	assert.Equal(t, "kraken", cfg.Fiat.Exchange)
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig([]string{
		"--debug",
		"--listen=0.0.0.0:8080",
		"--phoenixd.port=9999",
		"--phoenixd.password=s3cret",
		"--fiat.currencies=eur,usd",
		"--fiat.currencies=EUR",
		"--fiat.ttl=5m",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "0.0.0.0:8080", cfg.Listen)
	assert.Equal(t, 9999, cfg.Phoenixd.Port)
	assert.Equal(t, "s3cret", cfg.Phoenixd.Password)
	assert.Equal(t, []string{"EUR", "USD"}, cfg.Fiat.Currencies)
	assert.Equal(t, 5*time.Minute, cfg.Fiat.TTL)
}

func TestLoadConfigRejects(t *testing.T) {
	for _, args := range [][]string{
		{"--fiat.currencies=XYZ"},
		{"--fiat.currencies=,"},
		{"--fiat.ttl=0s"},
		{"--no-such-flag"},
	} {
		_, err := loadConfig(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestLoadConfigHelp(t *testing.T) {
	_, err := loadConfig([]string{"--help"})

	e, ok := err.(*flags.Error)
	require.True(t, ok)
	assert.Equal(t, flags.ErrHelp, e.Type)
}
