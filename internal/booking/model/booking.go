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

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ApprovalStatus is the administrative review status of a booking.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid reports whether s is a known approval status.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether review may move a booking from s to next.
// Only pending bookings can be decided, and a decision is final.
func (s ApprovalStatus) CanTransitionTo(next ApprovalStatus) bool {
	return s == ApprovalPending && (next == ApprovalApproved || next == ApprovalRejected)
}

func (s ApprovalStatus) String() string {
	return string(s)
}

// LineItemStatus is the completion status of a service line item.
type LineItemStatus string

const (
	LineItemPending   LineItemStatus = "pending"
	LineItemCompleted LineItemStatus = "completed"
)

// Booking is the canonical booking shape used throughout the workflow.
type Booking struct {
	ID             string            `json:"id"`
	BookingNumber  string            `json:"bookingNumber"`
	ApprovalStatus ApprovalStatus    `json:"approvalStatus"`
	BookingStatus  string            `json:"bookingStatus"`
	OTPOverridden  bool              `json:"otpOverridden"`
	LineItems      []ServiceLineItem `json:"lineItems"`
	CreatedAt      string            `json:"createdAt,omitempty"`
	PatientRef     string            `json:"patientRef,omitempty"`
	FacilityRef    string            `json:"facilityRef,omitempty"`
	PaymentModeRef string            `json:"paymentModeRef,omitempty"`
}

// ServiceLineItem is one diagnostic service within a booking. Monetary fields are
// decimal strings and are empty when the backend did not supply them.
type ServiceLineItem struct {
	ServiceCode   string         `json:"serviceCode"`
	ServiceName   string         `json:"serviceName"`
	SHARate       string         `json:"shaRate,omitempty"`
	VendorShare   string         `json:"vendorShare,omitempty"`
	FacilityShare string         `json:"facilityShare,omitempty"`
	ServiceStatus LineItemStatus `json:"serviceStatus"`
	ScheduledDate string         `json:"scheduledDate,omitempty"`
}

// IsCompleted reports whether the line item has been performed.
func (li ServiceLineItem) IsCompleted() bool {
	return li.ServiceStatus == LineItemCompleted
}

// DecimalString accepts a JSON string, number or null and keeps its textual form.
type DecimalString string

// UnmarshalJSON implements json.Unmarshaler.
func (d *DecimalString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DecimalString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Unparseable values become absent.
		*d = ""
		return nil
	}
	*d = DecimalString(n.String())
	return nil
}

// RawRevenue is the nested revenue block some line-item shapes carry.
type RawRevenue struct {
	VendorShare   DecimalString `json:"vendorShare"`
	FacilityShare DecimalString `json:"facilityShare"`
}

// RawLineItem is a line item as received from the backend, with every known field variant.
type RawLineItem struct {
	ServiceCode   string        `json:"serviceCode"`
	ServiceName   string        `json:"serviceName"`
	SHARate       DecimalString `json:"shaRate"`
	Tariff        DecimalString `json:"tariff"`
	VendorShare   DecimalString `json:"vendorShare"`
	FacilityShare DecimalString `json:"facilityShare"`
	Revenue       *RawRevenue   `json:"revenue,omitempty"`
	ServiceStatus string        `json:"serviceStatus"`
	Status        string        `json:"status"`
	ScheduledDate string        `json:"scheduledDate"`
	BookingDate   string        `json:"bookingDate"`
}

// RawBooking is a booking as received from the backend.
type RawBooking struct {
	ID             string        `json:"id"`
	LegacyID       string        `json:"_id"`
	BookingNumber  string        `json:"bookingNumber"`
	ApprovalStatus string        `json:"approvalStatus"`
	BookingStatus  string        `json:"bookingStatus"`
	OTPOverridden  bool          `json:"otpOverridden"`
	LineItems      []RawLineItem `json:"lineItems"`
	Services       []RawLineItem `json:"services"`
	CreatedAt      string        `json:"createdAt"`
	PatientRef     string        `json:"patientId"`
	FacilityRef    string        `json:"facilityId"`
	PaymentModeRef string        `json:"paymentModeId"`
	OTPCode        string        `json:"otpCode,omitempty"`
}
