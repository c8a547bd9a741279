package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"tithe/internal/back"
	"tithe/internal/bot"
	"tithe/internal/config"
	"tithe/internal/web"
)

func serve() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	b, err := back.New("sqlite3", conf.SQLDSN, conf)
	if err != nil {
		return err
	}

	bot, err := bot.New(b, conf)
	if err != nil {
		return err
	}

	server := web.NewServer(b, conf)

	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	go b.Run(&wg, done)
	go bot.Serve(&wg, done)
	go server.Serve(&wg, done)

	sig := <-signaled
	log.Printf("received signal %d", sig)
	close(done)
	wg.Wait()

	log.Print("shutdown complete")

	return nil
}
