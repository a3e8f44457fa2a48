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

package bulk

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/booking-workflow-api/internal/system/config"
)

// Initialize wires the bulk coordinator and registers its routes.
func Initialize(router gin.IRouter, cfg config.BulkConfig, client BookingBackend) CoordinatorInterface {
	coordinator := newCoordinator(client, NewBoard(), cfg)
	registerRoutes(router, newBulkHandler(coordinator))
	return coordinator
}

func registerRoutes(router gin.IRouter, handler *bulkHandler) {
	bookings := router.Group("/bookings")
	{
		bookings.GET("", handler.handleList)
		bookings.GET("/revenue", handler.handleRevenue)
		bookings.PUT("/selection", handler.handleSelect)
		bookings.POST("/bulk/approve", handler.handleApprove)
		bookings.POST("/bulk/reject", handler.handleReject)
	}
}
