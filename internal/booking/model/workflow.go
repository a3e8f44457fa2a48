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

package model

import otpmodel "github.com/wso2/booking-workflow-api/internal/otp/model"

// CreateWorkflowRequest creates a booking through the backend and opens its workflow session.
type CreateWorkflowRequest struct {
	PatientRef        string `json:"patientId" validate:"required"`
	FacilityRef       string `json:"facilityId" validate:"required"`
	ServiceRef        string `json:"serviceId" validate:"required"`
	PaymentModeRef    string `json:"paymentModeId" validate:"required"`
	ScheduledAt       string `json:"scheduledAt" validate:"required"`
	OverrideRequested bool   `json:"overrideRequested"`
}

// VerifyCodeRequest carries an operator-supplied OTP code.
type VerifyCodeRequest struct {
	Code string `json:"otpCode" validate:"required"`
}

// CancelRequest optionally explains a cancellation.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// OTPPromptResponse is returned when a session requests a code.
type OTPPromptResponse struct {
	BookingNumber string           `json:"bookingNumber"`
	Purpose       otpmodel.Purpose `json:"purpose"`
	Code          string           `json:"otpCode,omitempty"`
	Delivery      string           `json:"delivery"`
	State         LifecycleState   `json:"state"`
}

// VerificationResponse is returned when a session submits a code.
type VerificationResponse struct {
	BookingNumber string           `json:"bookingNumber"`
	Purpose       otpmodel.Purpose `json:"purpose"`
	Verified      bool             `json:"verified"`
	Message       string           `json:"message"`
	StepsAdvanced int              `json:"stepsAdvanced"`
	State         LifecycleState   `json:"state"`
}

// SessionView is the externally visible snapshot of a workflow session.
type SessionView struct {
	Booking            Booking             `json:"booking"`
	State              LifecycleState      `json:"state"`
	ConsentVerified    bool                `json:"consentVerified"`
	OverrideVerified   bool                `json:"overrideVerified"`
	Attempt            *ConsentAttempt     `json:"attempt,omitempty"`
	FulfillmentFailure *FulfillmentFailure `json:"fulfillmentFailure,omitempty"`
	History            []Transition        `json:"history"`
}
