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

package codes

// Error codes for the Booking Workflow Service
const (
	// General errors
	InternalServerError = "BWE-5000"
	DatabaseError       = "BWE-5001"
	BackendUnavailable  = "BWE-5020"
	InvalidRequest      = "BWE-4000"
	ValidationError     = "BWE-4001"
	ResourceNotFound    = "BWE-4004"
	ConflictError       = "BWE-4009"
	InvalidTransition   = "BWE-4010"
	MissingPrerequisite = "BWE-4012"

	// OTP-specific errors
	OTPPurposeInvalid = "BWE-4030"
	OTPDeliveryFailed = "BWE-5031"

	// Booking-specific errors
	BookingNotFound       = "BWE-4040"
	BookingNotPending     = "BWE-4041"
	BookingCreationFailed = "BWE-5040"
	SessionNotFound       = "BWE-4042"

	// Bulk-specific errors
	BulkEmptySelection = "BWE-4050"
)
