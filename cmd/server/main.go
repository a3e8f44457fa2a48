/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/log"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Priority: CONFIG_PATH env var > repository/conf/deployment.yaml > cmd/server/repository/conf/deployment.yaml
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.GetLogger().Fatal("Failed to load configuration", log.Error(err))
	}

	log.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	logger := log.GetLogger()
	logger.Info("Starting Booking Workflow API Server...",
		log.String("version", version),
		log.String("build_date", buildDate),
		log.String("log_level", log.Level()))

	if log.Level() != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler, err := registerServices(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", log.Error(err))
	}

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("Starting HTTP server...", log.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", log.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", log.Error(err))
	}
	unregisterServices()

	logger.Info("Server exited gracefully")
}
