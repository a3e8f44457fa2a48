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
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/booking-workflow-api/internal/backend"
	"github.com/wso2/booking-workflow-api/internal/bulk/model"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

type bulkHandler struct {
	coordinator CoordinatorInterface
}

func newBulkHandler(coordinator CoordinatorInterface) *bulkHandler {
	return &bulkHandler{coordinator: coordinator}
}

// handleList handles GET /bookings
func (h *bulkHandler) handleList(c *gin.Context) {
	var filter backend.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendError(c.Writer, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("invalid filter: %v", err)))
		return
	}

	view, serviceErr := h.coordinator.Refresh(c.Request.Context(), filter)
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleRevenue handles GET /bookings/revenue
func (h *bulkHandler) handleRevenue(c *gin.Context) {
	c.JSON(http.StatusOK, h.coordinator.Revenue(c.Request.Context()))
}

// handleSelect handles PUT /bookings/selection
func (h *bulkHandler) handleSelect(c *gin.Context) {
	var request model.SelectionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c.Writer, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	response, serviceErr := h.coordinator.Select(c.Request.Context(), request.BookingIDs)
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// handleApprove handles POST /bookings/bulk/approve
func (h *bulkHandler) handleApprove(c *gin.Context) {
	h.handleDecision(c, model.DecisionApprove)
}

// handleReject handles POST /bookings/bulk/reject
func (h *bulkHandler) handleReject(c *gin.Context) {
	h.handleDecision(c, model.DecisionReject)
}

func (h *bulkHandler) handleDecision(c *gin.Context, decision model.Decision) {
	var request model.BulkRequest
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		utils.SendError(c.Writer, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	var (
		summary    *model.Summary
		serviceErr *serviceerror.ServiceError
	)
	if decision == model.DecisionReject {
		summary, serviceErr = h.coordinator.BulkReject(c.Request.Context(), request.BookingIDs)
	} else {
		summary, serviceErr = h.coordinator.BulkApprove(c.Request.Context(), request.BookingIDs)
	}
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, summary)
}
