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

// LifecycleState is a state of the booking consent and fulfillment workflow.
type LifecycleState string

const (
	StateCreated               LifecycleState = "Created"
	StateAwaitingAuthorization LifecycleState = "AwaitingAuthorization"
	StateAuthorized            LifecycleState = "Authorized"
	StateAwaitingFulfillment   LifecycleState = "AwaitingFulfillment"
	StateFulfilled             LifecycleState = "Fulfilled"
	StateRejected              LifecycleState = "Rejected"
)

// lifecycleOrder lists the forward path; a state's index is its step.
var lifecycleOrder = []LifecycleState{
	StateCreated,
	StateAwaitingAuthorization,
	StateAuthorized,
	StateAwaitingFulfillment,
	StateFulfilled,
}

// Step returns the position of s on the forward path, or -1 for Rejected.
func (s LifecycleState) Step() int {
	for i, st := range lifecycleOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether no further transition is possible.
func (s LifecycleState) IsTerminal() bool {
	return s == StateFulfilled || s == StateRejected
}

// StateAtStep returns the state at the given forward step.
func StateAtStep(step int) (LifecycleState, bool) {
	if step < 0 || step >= len(lifecycleOrder) {
		return "", false
	}
	return lifecycleOrder[step], true
}

func (s LifecycleState) String() string {
	return string(s)
}

// Transition is one state change of a booking lifecycle.
type Transition struct {
	From    LifecycleState `json:"from"`
	To      LifecycleState `json:"to"`
	Trigger string         `json:"trigger"`
}

// Transition triggers
const (
	TriggerCreated             = "booking_created"
	TriggerConsentVerified     = "consent_verified"
	TriggerOverrideVerified    = "override_verified"
	TriggerFulfillmentStarted  = "fulfillment_started"
	TriggerFulfillmentVerified = "fulfillment_verified"
	TriggerRejected            = "administratively_rejected"
)

// ConsentAttempt is the outstanding OTP prompt of a session.
type ConsentAttempt struct {
	BookingNumber string           `json:"bookingNumber"`
	Purpose       otpmodel.Purpose `json:"purpose"`
	IssuedCode    string           `json:"issuedCode,omitempty"`
	Verified      bool             `json:"verified"`
	IssuedAt      int64            `json:"issuedAt"`
}

// FulfillmentFailure records an explicit fulfillment failure reported by the operator.
type FulfillmentFailure struct {
	Reason     string `json:"reason"`
	ReportedAt int64  `json:"reportedAt"`
}

// LifecycleAudit represents the BOOKING_LIFECYCLE_AUDIT table
type LifecycleAudit struct {
	AuditID       string  `db:"AUDIT_ID" json:"auditId"`
	BookingNumber string  `db:"BOOKING_NUMBER" json:"bookingNumber"`
	PreviousState *string `db:"PREVIOUS_STATE" json:"previousState,omitempty"`
	CurrentState  string  `db:"CURRENT_STATE" json:"currentState"`
	Reason        *string `db:"REASON" json:"reason,omitempty"`
	ActionBy      *string `db:"ACTION_BY" json:"actionBy,omitempty"`
	ActionTime    int64   `db:"ACTION_TIME" json:"actionTime"`
}

// LifecycleAuditListResponse represents the list of audit entries
type LifecycleAuditListResponse struct {
	Data []LifecycleAudit `json:"data"`
}
