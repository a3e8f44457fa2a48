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
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
)

var (
	sessionNotFoundError = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             codes.SessionNotFound,
		Error:            "workflow_not_found",
		ErrorDescription: "No workflow session is open for this booking",
	}

	bookingCreationError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             codes.BookingCreationFailed,
		Error:            "booking_creation_failed",
		ErrorDescription: "The booking backend did not return a usable booking",
	}
)

func invalidStateError(err error) *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.InvalidStateError, err.Error())
}
