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

package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
)

var bookingNotFoundError = serviceerror.ServiceError{
	Type:             serviceerror.ClientErrorType,
	Code:             codes.BookingNotFound,
	Error:            "booking_not_found",
	ErrorDescription: "The booking backend has no booking with this number",
}

// ToServiceError maps a client error to the service error returned to API callers.
func ToServiceError(err error, action string) *serviceerror.ServiceError {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		return serviceerror.CustomServiceError(serviceerror.BackendError,
			fmt.Sprintf("failed to %s: %v", action, err))
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound:
			return serviceerror.CustomServiceError(bookingNotFoundError,
				fmt.Sprintf("failed to %s: %s", action, statusErr.Message))
		case http.StatusConflict:
			return serviceerror.CustomServiceError(serviceerror.ConflictError,
				fmt.Sprintf("failed to %s: %s", action, statusErr.Message))
		}
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			fmt.Sprintf("failed to %s: %s", action, statusErr.Message))
	}

	return serviceerror.CustomServiceError(serviceerror.InternalServerError,
		fmt.Sprintf("failed to %s: %v", action, err))
}
