// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/verakocha/veriflow/pkg/logging"
)

var version = "dev"

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	development := flag.Bool("dev", false, "development logging")
	flag.Parse()

	logger := logging.New(*development)
	defer logger.Sync()

	server := &http.Server{
		Addr:         *addr,
		Handler:      newServer(logger).routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", *addr), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
