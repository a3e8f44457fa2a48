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
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wso2/booking-workflow-api/internal/backend"
	"github.com/wso2/booking-workflow-api/internal/otp"
	"github.com/wso2/booking-workflow-api/internal/router"
	"github.com/wso2/booking-workflow-api/internal/system/cache"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/database"
	"github.com/wso2/booking-workflow-api/internal/system/database/provider"
	"github.com/wso2/booking-workflow-api/internal/system/log"
	"github.com/wso2/booking-workflow-api/internal/system/messaging"
	"github.com/wso2/booking-workflow-api/internal/system/stores"
)

// Connections opened by registerServices and released on shutdown.
var (
	backendClient *backend.Client
	redisClient   *redis.Client
	publisher     *messaging.Publisher
	dbOpened      bool
)

// registerServices opens the configured connections and builds the HTTP handler.
func registerServices(cfg *config.Config) (http.Handler, error) {
	logger := log.GetLogger()

	registry, err := openRegistry(cfg)
	if err != nil {
		return nil, err
	}

	backing := otp.Backing{Registry: registry}
	if cfg.OTP.Store == config.OTPStoreRedis {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		backing.Redis = redisClient
	}
	if cfg.OTP.IsQueueDelivery() {
		publisher, err = messaging.NewPublisher(cfg.Messaging.URL, cfg.Messaging.OTPQueue)
		if err != nil {
			return nil, err
		}
		backing.Publisher = publisher
	}

	backendClient = backend.NewClient(&cfg.Backend)

	var gate otp.OTPGateInterface
	if cfg.OTP.IsRemote() {
		gate = backend.NewRemoteGate(backendClient)
		logger.Info("OTP gate delegates to the booking backend")
	} else {
		gate, err = otp.NewGate(&cfg.OTP, backing)
		if err != nil {
			return nil, fmt.Errorf("failed to build otp gate: %w", err)
		}
		logger.Info("OTP gate initialized",
			log.String("store", cfg.OTP.Store),
			log.String("delivery", cfg.OTP.Delivery.Mode))
	}

	engine := router.SetupRouter(cfg, router.Dependencies{
		Gate:     gate,
		Backend:  backendClient,
		Registry: registry,
	})
	logger.Info("Workflow, OTP and bulk modules initialized")

	return engine, nil
}

// openRegistry connects the booking database when any store needs it. A nil registry means none does.
func openRegistry(cfg *config.Config) (*stores.StoreRegistry, error) {
	if !cfg.Database.Booking.Enabled && cfg.OTP.Store != config.OTPStoreDatabase {
		return nil, nil
	}

	db, err := database.Initialize(&cfg.Database.Booking)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	provider.InitDBProvider(db)
	dbOpened = true

	dbClient, err := provider.GetDBProvider().GetBookingDBClient()
	if err != nil {
		return nil, err
	}
	return stores.NewStoreRegistry(dbClient), nil
}

// unregisterServices releases every connection opened by registerServices.
func unregisterServices() {
	logger := log.GetLogger()

	if backendClient != nil {
		backendClient.Close()
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close rabbitmq publisher", log.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis client", log.Error(err))
		}
	}
	if dbOpened {
		if err := provider.GetDBProviderCloser().Close(); err != nil {
			logger.Warn("Failed to close database", log.Error(err))
		}
	}
}
