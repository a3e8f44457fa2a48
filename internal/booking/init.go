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

package booking

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/booking-workflow-api/internal/otp"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/stores"
)

// Initialize wires the workflow service and registers its routes.
// registry may be nil when no database is configured.
func Initialize(
	router gin.IRouter,
	cfg *config.Config,
	registry *stores.StoreRegistry,
	gate otp.OTPGateInterface,
	client BookingBackend,
) WorkflowServiceInterface {
	audits := newAuditStore(cfg.Workflow, registry)
	service := newWorkflowService(
		client,
		NewSessionManager(audits),
		NewConsentResolver(gate),
		NewFulfillmentGate(gate),
		audits,
		WorkflowOptions{AdoptInitialCode: cfg.OTP.IsRemote()},
	)
	registerRoutes(router, newWorkflowHandler(service))
	return service
}

func newAuditStore(cfg config.WorkflowConfig, registry *stores.StoreRegistry) AuditStore {
	if !cfg.AuditEnabled {
		return discardAuditStore{}
	}
	if registry == nil {
		return newMemoryAuditStore()
	}
	return newDBAuditStore(registry)
}

func registerRoutes(router gin.IRouter, handler *workflowHandler) {
	router.POST("/workflows", handler.handleCreate)

	workflow := router.Group("/workflows/:bookingNumber")
	{
		workflow.GET("", handler.handleGet)
		workflow.POST("/open", handler.handleOpen)
		workflow.GET("/revenue", handler.handleGetRevenue)
		workflow.GET("/audit", handler.handleGetAudit)

		workflow.POST("/authorization/request", handler.handleRequestAuthorization)
		workflow.POST("/authorization/verify", handler.handleVerifyAuthorization)
		workflow.POST("/authorization/cancel", handler.handleCancelAuthorization)

		workflow.POST("/fulfillment/proceed", handler.handleProceed)
		workflow.POST("/fulfillment/request", handler.handleRequestFulfillment)
		workflow.POST("/fulfillment/verify", handler.handleVerifyFulfillment)
		workflow.POST("/fulfillment/cancel", handler.handleCancelFulfillment)
	}
}
