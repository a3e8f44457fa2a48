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
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// workflowHandler handles HTTP requests for booking workflow sessions
type workflowHandler struct {
	service WorkflowServiceInterface
}

func newWorkflowHandler(service WorkflowServiceInterface) *workflowHandler {
	return &workflowHandler{service: service}
}

// handleCreate handles POST /workflows
func (h *workflowHandler) handleCreate(c *gin.Context) {
	var request model.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c.Writer, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	view, serviceErr := h.service.CreateWorkflow(c.Request.Context(), request, operator(c))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// handleOpen handles POST /workflows/{bookingNumber}/open
func (h *workflowHandler) handleOpen(c *gin.Context) {
	view, serviceErr := h.service.OpenWorkflow(c.Request.Context(), c.Param("bookingNumber"), operator(c))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleGet handles GET /workflows/{bookingNumber}
func (h *workflowHandler) handleGet(c *gin.Context) {
	view, serviceErr := h.service.GetWorkflow(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleRequestAuthorization handles POST /workflows/{bookingNumber}/authorization/request
func (h *workflowHandler) handleRequestAuthorization(c *gin.Context) {
	prompt, serviceErr := h.service.RequestAuthorization(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusCreated, prompt)
}

// handleVerifyAuthorization handles POST /workflows/{bookingNumber}/authorization/verify
func (h *workflowHandler) handleVerifyAuthorization(c *gin.Context) {
	var request model.VerifyCodeRequest
	if err := bindCode(c, &request); err != nil {
		utils.SendError(c.Writer, err)
		return
	}

	result, serviceErr := h.service.VerifyAuthorization(c.Request.Context(), c.Param("bookingNumber"),
		request.Code, operator(c))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleCancelAuthorization handles POST /workflows/{bookingNumber}/authorization/cancel
func (h *workflowHandler) handleCancelAuthorization(c *gin.Context) {
	view, serviceErr := h.service.CancelAuthorization(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleProceed handles POST /workflows/{bookingNumber}/fulfillment/proceed
func (h *workflowHandler) handleProceed(c *gin.Context) {
	view, serviceErr := h.service.ProceedToFulfillment(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleRequestFulfillment handles POST /workflows/{bookingNumber}/fulfillment/request
func (h *workflowHandler) handleRequestFulfillment(c *gin.Context) {
	prompt, serviceErr := h.service.RequestFulfillment(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusCreated, prompt)
}

// handleVerifyFulfillment handles POST /workflows/{bookingNumber}/fulfillment/verify
func (h *workflowHandler) handleVerifyFulfillment(c *gin.Context) {
	var request model.VerifyCodeRequest
	if err := bindCode(c, &request); err != nil {
		utils.SendError(c.Writer, err)
		return
	}

	result, serviceErr := h.service.VerifyFulfillment(c.Request.Context(), c.Param("bookingNumber"),
		request.Code, operator(c))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleCancelFulfillment handles POST /workflows/{bookingNumber}/fulfillment/cancel
func (h *workflowHandler) handleCancelFulfillment(c *gin.Context) {
	var request model.CancelRequest
	// The body is optional.
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		utils.SendError(c.Writer, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	view, serviceErr := h.service.CancelFulfillment(c.Request.Context(), c.Param("bookingNumber"),
		request.Reason, operator(c))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleGetRevenue handles GET /workflows/{bookingNumber}/revenue
func (h *workflowHandler) handleGetRevenue(c *gin.Context) {
	totals, serviceErr := h.service.GetRevenue(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// handleGetAudit handles GET /workflows/{bookingNumber}/audit
func (h *workflowHandler) handleGetAudit(c *gin.Context) {
	audits, serviceErr := h.service.GetAuditTrail(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, audits)
}

func bindCode(c *gin.Context, request *model.VerifyCodeRequest) *serviceerror.ServiceError {
	if err := c.ShouldBindJSON(request); err != nil {
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("invalid request body: %v", err))
	}
	if err := utils.ValidateStruct(request); err != nil {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	return nil
}

func operator(c *gin.Context) string {
	return actorOrSystem(c.GetHeader(constants.OperatorIDHeaderName))
}
