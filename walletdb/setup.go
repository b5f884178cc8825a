package walletdb

import (
	"github.com/go-errors/errors"
)

const DefaultNetwork = "mainnet"

// Setup holds the choices made in the wallet's first-run setup.
type Setup struct {
	Network      string `json:"network"`
	FiatCurrency string `json:"fiatCurrency"`
	Completed    bool   `json:"completed"`
}

// GetSetup returns the stored setup, or defaults if setup never ran.
func (db *DB) GetSetup() (*Setup, error) {
	setup := &Setup{}

	found, err := db.getJSON(settingsBucket, setupKey, setup)
	if err != nil {
		return nil, errors.Errorf("could not read setup: %v", err)
	}

	if !found {
		setup = &Setup{}
	}

	if setup.Network == "" {
		setup.Network = DefaultNetwork
	}

	return setup, nil
}

func (db *DB) SetSetup(setup *Setup) error {
	if setup == nil {
		return errors.New("setup must not be nil")
	}

	if err := db.setJSON(settingsBucket, setupKey, setup); err != nil {
		return errors.Errorf("could not save setup: %v", err)
	}

	return nil
}

// ResetSetup removes the stored setup.
func (db *DB) ResetSetup() error {
	return db.setJSON(settingsBucket, setupKey, nil)
}
