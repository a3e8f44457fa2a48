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

package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/log"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// Validation messages
const (
	MsgConsentVerified     = "Consent OTP verified successfully"
	MsgOverrideVerified    = "Override OTP verified successfully"
	MsgFulfillmentVerified = "Fulfillment OTP verified successfully"
	MsgCodeMismatch        = "Invalid OTP code, request a new code and retry"
	MsgNoOutstandingCode   = "No outstanding OTP for this booking, request a new code"
	MsgCodeExpired         = "OTP code has expired, request a new code"
)

var invalidPurposeError = serviceerror.ServiceError{
	Type:             serviceerror.ClientErrorType,
	Code:             codes.OTPPurposeInvalid,
	Error:            "invalid_otp_purpose",
	ErrorDescription: "purpose must be one of consent, override, fulfillment",
}

// OTPGateInterface issues and validates one-time codes bound to a booking number and purpose.
type OTPGateInterface interface {
	RequestOTP(ctx context.Context, bookingNumber string, purpose model.Purpose) (*model.IssueResponse, *serviceerror.ServiceError)
	ValidateOTP(ctx context.Context, bookingNumber string, purpose model.Purpose, code string) (*model.ValidationResult, *serviceerror.ServiceError)
	Discard(ctx context.Context, bookingNumber string, purpose model.Purpose) *serviceerror.ServiceError
	GetAuthorization(ctx context.Context, bookingNumber string) (*model.AuthorizationResponse, *serviceerror.ServiceError)
}

// GateOptions tunes code issuance.
type GateOptions struct {
	HashCost int
	TTL      time.Duration
}

type otpGate struct {
	store     challengeStore
	deliverer Deliverer
	opts      GateOptions
	generate  func() (string, error)
	now       func() int64
}

func newOTPGate(store challengeStore, deliverer Deliverer, opts GateOptions) *otpGate {
	return &otpGate{
		store:     store,
		deliverer: deliverer,
		opts:      opts,
		generate:  func() (string, error) { return generateNumericCode(constants.OTPCodeLength) },
		now:       utils.GetCurrentTimeMillis,
	}
}

// RequestOTP issues a fresh code, replacing any outstanding code for the same booking and purpose.
func (g *otpGate) RequestOTP(
	ctx context.Context,
	bookingNumber string,
	purpose model.Purpose,
) (*model.IssueResponse, *serviceerror.ServiceError) {
	if err := validateInputs(bookingNumber, purpose); err != nil {
		return nil, err
	}
	logger := gateLogger(bookingNumber, purpose)

	code, err := g.generate()
	if err != nil {
		logger.Error("Failed to generate OTP", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, "failed to generate otp")
	}
	hash, err := hashCode(code, g.opts.HashCost)
	if err != nil {
		logger.Error("Failed to hash OTP", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, "failed to generate otp")
	}

	issuedAt := g.now()
	challenge := &model.Challenge{
		BookingNumber: bookingNumber,
		Purpose:       purpose,
		CodeHash:      hash,
		IssuedAt:      issuedAt,
	}
	if g.opts.TTL > 0 {
		challenge.ExpiresAt = issuedAt + g.opts.TTL.Milliseconds()
	}

	if err := g.store.Save(ctx, challenge); err != nil {
		logger.Error("Failed to store OTP challenge", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError,
			fmt.Sprintf("failed to issue otp: %v", err))
	}

	expose, err := g.deliverer.Deliver(ctx, challenge, code)
	if err != nil {
		logger.Error("Failed to deliver OTP", log.Error(err))
		_ = g.store.Delete(ctx, bookingNumber, purpose)
		return nil, &serviceerror.ServiceError{
			Type:             serviceerror.ServerErrorType,
			Code:             codes.OTPDeliveryFailed,
			Error:            "otp_delivery_failed",
			ErrorDescription: "the code could not be delivered, request a new code",
		}
	}

	logger.Info("OTP issued", log.String("delivery", g.deliverer.Mode()))

	response := &model.IssueResponse{
		BookingNumber: bookingNumber,
		Purpose:       purpose,
		Delivery:      g.deliverer.Mode(),
		IssuedAt:      issuedAt,
	}
	if expose {
		response.Code = code
	}
	return response, nil
}

// ValidateOTP checks code against the latest issued code. The outstanding code is consumed by
// every attempt, so a retry always needs a fresh request. A mismatch is reported in the result.
func (g *otpGate) ValidateOTP(
	ctx context.Context,
	bookingNumber string,
	purpose model.Purpose,
	code string,
) (*model.ValidationResult, *serviceerror.ServiceError) {
	if err := validateInputs(bookingNumber, purpose); err != nil {
		return nil, err
	}
	logger := gateLogger(bookingNumber, purpose)

	result := &model.ValidationResult{BookingNumber: bookingNumber, Purpose: purpose}

	challenge, err := g.store.Consume(ctx, bookingNumber, purpose)
	if err != nil {
		logger.Error("Failed to read OTP challenge", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError,
			fmt.Sprintf("failed to validate otp: %v", err))
	}

	switch {
	case challenge == nil:
		result.Message = MsgNoOutstandingCode
	case challenge.ExpiresAt > 0 && g.now() >= challenge.ExpiresAt:
		result.Message = MsgCodeExpired
	case !codeMatches(challenge.CodeHash, code):
		result.Message = MsgCodeMismatch
	default:
		result.Verified = true
		result.Message = successMessage(purpose)
	}

	if !result.Verified {
		logger.Info("OTP validation failed", log.String("reason", result.Message))
		return result, nil
	}

	if purpose.GrantsAuthorization() {
		grant := &model.Grant{BookingNumber: bookingNumber, Purpose: purpose, GrantedAt: g.now()}
		if err := g.store.SaveGrant(ctx, grant); err != nil {
			logger.Error("Failed to record authorization grant", log.Error(err))
			return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError,
				fmt.Sprintf("failed to record authorization: %v", err))
		}
	}

	logger.Info("OTP verified")
	return result, nil
}

// Discard drops the outstanding code without validating it.
func (g *otpGate) Discard(ctx context.Context, bookingNumber string, purpose model.Purpose) *serviceerror.ServiceError {
	if err := validateInputs(bookingNumber, purpose); err != nil {
		return err
	}
	if err := g.store.Delete(ctx, bookingNumber, purpose); err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError,
			fmt.Sprintf("failed to discard otp: %v", err))
	}
	gateLogger(bookingNumber, purpose).Debug("OTP discarded")
	return nil
}

// GetAuthorization returns the authorization grant recorded for the booking.
func (g *otpGate) GetAuthorization(ctx context.Context, bookingNumber string) (*model.AuthorizationResponse, *serviceerror.ServiceError) {
	if bookingNumber == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "booking number is required")
	}
	grant, err := g.store.GetGrant(ctx, bookingNumber)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError,
			fmt.Sprintf("failed to read authorization: %v", err))
	}

	response := &model.AuthorizationResponse{BookingNumber: bookingNumber}
	if grant != nil {
		response.Authorized = true
		response.Purpose = grant.Purpose
		response.GrantedAt = grant.GrantedAt
	}
	return response, nil
}

func validateInputs(bookingNumber string, purpose model.Purpose) *serviceerror.ServiceError {
	if bookingNumber == "" {
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "booking number is required")
	}
	if !purpose.IsValid() {
		err := invalidPurposeError
		return &err
	}
	return nil
}

func successMessage(purpose model.Purpose) string {
	switch purpose {
	case model.PurposeOverride:
		return MsgOverrideVerified
	case model.PurposeFulfillment:
		return MsgFulfillmentVerified
	}
	return MsgConsentVerified
}

func gateLogger(bookingNumber string, purpose model.Purpose) *log.Logger {
	return log.GetLogger().With(
		log.String(log.LoggerKeyComponentName, "OTPGate"),
		log.String("booking_number", bookingNumber),
		log.String("purpose", purpose.String()),
	)
}
