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
	"context"
	"sync"

	"github.com/wso2/booking-workflow-api/internal/otp"
	otpmodel "github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/log"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// OTPClient is the subset of Client a RemoteGate needs.
type OTPClient interface {
	RequestConsentOTP(ctx context.Context, bookingNumber string) (*OTPIssue, error)
	VerifyConsentOTP(ctx context.Context, bookingNumber, code string) (*VerifyOutcome, error)
	RequestOverrideOTP(ctx context.Context, bookingNumber string) (*OTPIssue, error)
	VerifyOverrideOTP(ctx context.Context, bookingNumber, code string) (*VerifyOutcome, error)
	RequestFulfillmentOTP(ctx context.Context, bookingNumber string) (*OTPIssue, error)
	VerifyFulfillmentOTP(ctx context.Context, bookingNumber, code string) (*VerifyOutcome, error)
}

// RemoteGate serves the OTP gate contract from the booking backend.
// The backend invalidates superseded codes itself; grants are tracked in process.
type RemoteGate struct {
	client OTPClient
	mu     sync.RWMutex
	grants map[string]otpmodel.Grant
}

var _ otp.OTPGateInterface = (*RemoteGate)(nil)

// NewRemoteGate creates a gate backed by the booking backend.
func NewRemoteGate(client OTPClient) *RemoteGate {
	return &RemoteGate{
		client: client,
		grants: make(map[string]otpmodel.Grant),
	}
}

// RequestOTP asks the backend for a code. The backend's code is echoed to the caller.
func (g *RemoteGate) RequestOTP(
	ctx context.Context,
	bookingNumber string,
	purpose otpmodel.Purpose,
) (*otpmodel.IssueResponse, *serviceerror.ServiceError) {
	if err := checkInputs(bookingNumber, purpose); err != nil {
		return nil, err
	}

	var (
		issue *OTPIssue
		err   error
	)
	switch purpose {
	case otpmodel.PurposeConsent:
		issue, err = g.client.RequestConsentOTP(ctx, bookingNumber)
	case otpmodel.PurposeOverride:
		issue, err = g.client.RequestOverrideOTP(ctx, bookingNumber)
	default:
		issue, err = g.client.RequestFulfillmentOTP(ctx, bookingNumber)
	}
	if err != nil {
		return nil, ToServiceError(err, "request "+purpose.String()+" otp")
	}

	return &otpmodel.IssueResponse{
		BookingNumber: bookingNumber,
		Purpose:       purpose,
		Code:          issue.Code,
		Delivery:      config.OTPDeliveryEcho,
		IssuedAt:      utils.GetCurrentTimeMillis(),
	}, nil
}

// ValidateOTP verifies code with the backend. A mismatch is reported in the result.
func (g *RemoteGate) ValidateOTP(
	ctx context.Context,
	bookingNumber string,
	purpose otpmodel.Purpose,
	code string,
) (*otpmodel.ValidationResult, *serviceerror.ServiceError) {
	if err := checkInputs(bookingNumber, purpose); err != nil {
		return nil, err
	}

	var (
		outcome *VerifyOutcome
		err     error
	)
	switch purpose {
	case otpmodel.PurposeConsent:
		outcome, err = g.client.VerifyConsentOTP(ctx, bookingNumber, code)
	case otpmodel.PurposeOverride:
		outcome, err = g.client.VerifyOverrideOTP(ctx, bookingNumber, code)
	default:
		outcome, err = g.client.VerifyFulfillmentOTP(ctx, bookingNumber, code)
	}
	if err != nil {
		return nil, ToServiceError(err, "verify "+purpose.String()+" otp")
	}

	if outcome.Verified && purpose.GrantsAuthorization() {
		g.mu.Lock()
		g.grants[bookingNumber] = otpmodel.Grant{
			BookingNumber: bookingNumber,
			Purpose:       purpose,
			GrantedAt:     utils.GetCurrentTimeMillis(),
		}
		g.mu.Unlock()
	}

	log.GetLogger().Info("Remote OTP validation completed",
		log.String(log.LoggerKeyComponentName, "RemoteGate"),
		log.String("booking_number", bookingNumber),
		log.String("purpose", purpose.String()),
		log.Bool("verified", outcome.Verified))

	return &otpmodel.ValidationResult{
		BookingNumber: bookingNumber,
		Purpose:       purpose,
		Verified:      outcome.Verified,
		Message:       outcome.Message,
	}, nil
}

// Discard has nothing to release remotely: the next request supersedes the code.
func (g *RemoteGate) Discard(ctx context.Context, bookingNumber string, purpose otpmodel.Purpose) *serviceerror.ServiceError {
	return checkInputs(bookingNumber, purpose)
}

// GetAuthorization returns the grant recorded by this process for the booking.
func (g *RemoteGate) GetAuthorization(ctx context.Context, bookingNumber string) (*otpmodel.AuthorizationResponse, *serviceerror.ServiceError) {
	if bookingNumber == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "booking number is required")
	}

	g.mu.RLock()
	grant, ok := g.grants[bookingNumber]
	g.mu.RUnlock()

	response := &otpmodel.AuthorizationResponse{BookingNumber: bookingNumber}
	if ok {
		response.Authorized = true
		response.Purpose = grant.Purpose
		response.GrantedAt = grant.GrantedAt
	}
	return response, nil
}

func checkInputs(bookingNumber string, purpose otpmodel.Purpose) *serviceerror.ServiceError {
	if bookingNumber == "" {
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "booking number is required")
	}
	if !purpose.IsValid() {
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"purpose must be one of consent, override, fulfillment")
	}
	return nil
}
