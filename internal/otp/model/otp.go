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

// Purpose names the independent namespace an OTP is issued in.
type Purpose string

const (
	PurposeConsent     Purpose = "consent"
	PurposeOverride    Purpose = "override"
	PurposeFulfillment Purpose = "fulfillment"
)

// IsValid reports whether p is a known purpose.
func (p Purpose) IsValid() bool {
	switch p {
	case PurposeConsent, PurposeOverride, PurposeFulfillment:
		return true
	}
	return false
}

func (p Purpose) String() string {
	return string(p)
}

// GrantsAuthorization reports whether a successful validation for p authorizes the booking.
func (p Purpose) GrantsAuthorization() bool {
	return p == PurposeConsent || p == PurposeOverride
}

// Challenge is the stored state of the latest code issued for a booking and purpose.
type Challenge struct {
	BookingNumber string  `json:"bookingNumber"`
	Purpose       Purpose `json:"purpose"`
	CodeHash      string  `json:"codeHash"`
	IssuedAt      int64   `json:"issuedAt"`
	ExpiresAt     int64   `json:"expiresAt,omitempty"`
}

// Grant records that a booking obtained consent-equivalent authorization.
type Grant struct {
	BookingNumber string  `json:"bookingNumber"`
	Purpose       Purpose `json:"purpose"`
	GrantedAt     int64   `json:"grantedAt"`
}

// IssueRequest is the body of an OTP request call.
type IssueRequest struct {
	BookingNumber string `json:"bookingNumber" validate:"required"`
}

// IssueResponse is returned when a code is issued. Code is empty when delivery is out-of-band.
type IssueResponse struct {
	BookingNumber string  `json:"bookingNumber"`
	Purpose       Purpose `json:"purpose"`
	Code          string  `json:"otpCode,omitempty"`
	Delivery      string  `json:"delivery"`
	IssuedAt      int64   `json:"issuedAt"`
}

// ValidateRequest is the body of an OTP validation call.
type ValidateRequest struct {
	BookingNumber string `json:"bookingNumber" validate:"required"`
	Code          string `json:"otpCode" validate:"required"`
}

// ValidationResult reports the outcome of a validation. A mismatch is Verified=false, not an error.
type ValidationResult struct {
	BookingNumber string  `json:"bookingNumber"`
	Purpose       Purpose `json:"purpose"`
	Verified      bool    `json:"verified"`
	Message       string  `json:"message"`
}

// AuthorizationResponse describes the authorization grant held by a booking, if any.
type AuthorizationResponse struct {
	BookingNumber string  `json:"bookingNumber"`
	Authorized    bool    `json:"authorized"`
	Purpose       Purpose `json:"purpose,omitempty"`
	GrantedAt     int64   `json:"grantedAt,omitempty"`
}

// DeliveryMessage is published for out-of-band delivery of a code to the authorizing party.
type DeliveryMessage struct {
	MessageID     string  `json:"messageId"`
	BookingNumber string  `json:"bookingNumber"`
	Purpose       Purpose `json:"purpose"`
	Code          string  `json:"otpCode"`
	IssuedAt      int64   `json:"issuedAt"`
	ExpiresAt     int64   `json:"expiresAt,omitempty"`
}
