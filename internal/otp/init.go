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

package otp

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/stores"
)

// Backing carries the connections an OTP store or deliverer may need.
type Backing struct {
	Registry  *stores.StoreRegistry
	Redis     redis.Cmdable
	Publisher MessagePublisher
}

// NewGate builds the in-process OTP gate for the configured store and delivery mode.
func NewGate(cfg *config.OTPConfig, backing Backing) (OTPGateInterface, error) {
	store, err := newChallengeStore(cfg, backing)
	if err != nil {
		return nil, err
	}

	deliverer, err := NewDeliverer(cfg.Delivery.Mode, backing.Publisher)
	if err != nil {
		return nil, err
	}

	return newOTPGate(store, deliverer, GateOptions{HashCost: cfg.HashCost, TTL: cfg.TTL}), nil
}

func newChallengeStore(cfg *config.OTPConfig, backing Backing) (challengeStore, error) {
	switch cfg.Store {
	case config.OTPStoreDatabase:
		if backing.Registry == nil {
			return nil, fmt.Errorf("database otp store requires a store registry")
		}
		return newDBStore(backing.Registry), nil
	case config.OTPStoreRedis:
		if backing.Redis == nil {
			return nil, fmt.Errorf("redis otp store requires a redis client")
		}
		return newRedisStore(backing.Redis, cfg.KeyPrefix, cfg.TTL), nil
	case "", config.OTPStoreMemory:
		return newMemoryStore(), nil
	}
	return nil, fmt.Errorf("unsupported otp store: %q", cfg.Store)
}

// Initialize registers the OTP gate routes on the given router.
func Initialize(router gin.IRouter, gate OTPGateInterface) {
	registerRoutes(router, newOTPHandler(gate))
}

func registerRoutes(router gin.IRouter, handler *otpHandler) {
	otpGroup := router.Group("/otp/:purpose")
	{
		otpGroup.POST("/request", handler.handleRequest)
		otpGroup.POST("/validate", handler.handleValidate)
		otpGroup.DELETE("/:bookingNumber", handler.handleDiscard)
	}

	router.GET("/authorizations/:bookingNumber", handler.handleGetAuthorization)
}
