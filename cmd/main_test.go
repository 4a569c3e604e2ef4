package main

import (
	"context"
	"testing"

	"github.com/cristianortiz/sneakerbid/internal/shared/config"
	"github.com/peterldowns/testy/check"
)

func TestRun_ReturnsStartupErrors(t *testing.T) {
	err := run(context.Background(), config.Config{Store: "sqlite"})
	check.Error(t, err)

	// the stores are already open when the relay fails, run still returns
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = run(ctx, config.Config{Store: "memory", RedisAddr: "127.0.0.1:6379"})
	check.Error(t, err)
}
