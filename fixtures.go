package main

import (
	"tithe/internal/back"
	"tithe/internal/config"
)

func loadFixtures() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	b, err := back.New("sqlite3", conf.SQLDSN, conf)
	if err != nil {
		return err
	}

	return b.LoadFixtures()
}
