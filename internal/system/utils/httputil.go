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

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/error/apierror"
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
)

// JSONResponse writes data as a JSON body with the given status code.
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// SendError writes a ServiceError as an HTTP response with appropriate status code
func SendError(w http.ResponseWriter, err *serviceerror.ServiceError) {
	errorResponse := apierror.NewErrorResponse(err.Error, err.ErrorDescription)
	JSONResponse(w, StatusCodeFor(err), errorResponse)
}

// StatusCodeFor maps a ServiceError to its HTTP status.
func StatusCodeFor(err *serviceerror.ServiceError) int {
	switch err.Code {
	case codes.ResourceNotFound, codes.BookingNotFound, codes.SessionNotFound:
		return http.StatusNotFound
	case codes.ConflictError, codes.InvalidTransition, codes.BookingNotPending:
		return http.StatusConflict
	case codes.MissingPrerequisite:
		return http.StatusPreconditionFailed
	case codes.BackendUnavailable:
		return http.StatusBadGateway
	}
	if err.Type == serviceerror.ClientErrorType {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
