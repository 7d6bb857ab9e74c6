/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 21:15:11
 * @FilePath: \shiftcash-bot\backend\cmd\server\main.go
 * @LastEditTime: 2025-10-20 10:44:27
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shiftcash-bot/backend/internal/app"
	"shiftcash-bot/backend/internal/bootstrap"
	appLogger "shiftcash-bot/backend/internal/infra/logger"
	"shiftcash-bot/backend/internal/infra/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := appLogger.Init(); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer appLogger.Sync()
	logger := appLogger.S()

	metrics.MustRegister()

	resources, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := resources.Close(); err != nil {
			logger.Errorw("resource cleanup error", "error", err)
		}
	}()

	application, err := bootstrap.BuildApplication(ctx, logger, resources)
	if err != nil {
		log.Fatalf("build application failed: %v", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", resources.Bot.HTTPPort),
		Handler: application.Router,
	}

	go func() {
		logger.Infow("ops http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("http server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := application.Dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorw("dispatcher stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("http server shutdown error", "error", err)
	}

	select {
	case <-dispatcherDone:
	case <-shutdownCtx.Done():
		logger.Warnw("dispatcher did not stop in time")
	}
}
