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

// Package router assembles the gin engine serving the booking workflow API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/booking-workflow-api/internal/booking"
	"github.com/wso2/booking-workflow-api/internal/bulk"
	"github.com/wso2/booking-workflow-api/internal/otp"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/middleware"
	"github.com/wso2/booking-workflow-api/internal/system/stores"
)

// Backend is the booking backend surface the workflow and bulk modules share.
type Backend interface {
	booking.BookingBackend
	bulk.BookingBackend
}

// Dependencies carries the connections built at startup. Registry is nil without a database.
type Dependencies struct {
	Gate     otp.OTPGateInterface
	Backend  Backend
	Registry *stores.StoreRegistry
}

// SetupRouter configures middleware, the health check and all API routes.
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	if cfg.CORS.Enabled {
		router.Use(middleware.CORSMiddleware(middleware.CORSOptions{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group(constants.APIBasePath)
	otp.Initialize(v1, deps.Gate)
	booking.Initialize(v1, cfg, deps.Registry, deps.Gate, deps.Backend)
	bulk.Initialize(v1, cfg.Bulk, deps.Backend)

	return router
}
