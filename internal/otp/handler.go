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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// otpHandler handles HTTP requests for the OTP gate
type otpHandler struct {
	gate OTPGateInterface
}

func newOTPHandler(gate OTPGateInterface) *otpHandler {
	return &otpHandler{gate: gate}
}

// handleRequest handles POST /otp/{purpose}/request
func (h *otpHandler) handleRequest(c *gin.Context) {
	var request model.IssueRequest
	if err := bindAndValidate(c, &request); err != nil {
		utils.SendError(c.Writer, err)
		return
	}

	response, serviceErr := h.gate.RequestOTP(c.Request.Context(), request.BookingNumber, model.Purpose(c.Param("purpose")))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// handleValidate handles POST /otp/{purpose}/validate
func (h *otpHandler) handleValidate(c *gin.Context) {
	var request model.ValidateRequest
	if err := bindAndValidate(c, &request); err != nil {
		utils.SendError(c.Writer, err)
		return
	}

	result, serviceErr := h.gate.ValidateOTP(c.Request.Context(), request.BookingNumber,
		model.Purpose(c.Param("purpose")), request.Code)
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleDiscard handles DELETE /otp/{purpose}/{bookingNumber}
func (h *otpHandler) handleDiscard(c *gin.Context) {
	if serviceErr := h.gate.Discard(c.Request.Context(), c.Param("bookingNumber"), model.Purpose(c.Param("purpose"))); serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleGetAuthorization handles GET /authorizations/{bookingNumber}
func (h *otpHandler) handleGetAuthorization(c *gin.Context) {
	response, serviceErr := h.gate.GetAuthorization(c.Request.Context(), c.Param("bookingNumber"))
	if serviceErr != nil {
		utils.SendError(c.Writer, serviceErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

func bindAndValidate(c *gin.Context, v interface{}) *serviceerror.ServiceError {
	if err := c.ShouldBindJSON(v); err != nil {
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("invalid request body: %v", err))
	}
	if err := utils.ValidateStruct(v); err != nil {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	return nil
}
