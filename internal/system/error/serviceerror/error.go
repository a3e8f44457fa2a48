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

// Package serviceerror defines the error values returned by service layers.
package serviceerror

import "github.com/wso2/booking-workflow-api/internal/system/error/codes"

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.InternalServerError,
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.DatabaseError,
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	// BackendError is a retryable failure talking to the booking backend.
	BackendError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.BackendUnavailable,
		Error:            "backend_unavailable",
		ErrorDescription: "The booking backend could not be reached, retry the operation",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidRequest,
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ValidationError,
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ResourceNotFound,
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ConflictError,
		Error:            "conflict",
		ErrorDescription: "Request conflicts with current state",
	}

	// InvalidStateError is returned when a lifecycle transition is not allowed from the current state.
	InvalidStateError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidTransition,
		Error:            "invalid_state_transition",
		ErrorDescription: "The booking is not in a state that allows this action",
	}

	MissingPrerequisiteError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.MissingPrerequisite,
		Error:            "missing_prerequisite",
		ErrorDescription: "A required reference or outstanding code is missing",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

// Is reports whether err carries the same code as base.
func Is(err *ServiceError, base ServiceError) bool {
	return err != nil && err.Code == base.Code
}
