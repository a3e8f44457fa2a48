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
	"context"
	"fmt"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/otp"
	otpmodel "github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/log"
)

// ConsentResolver obtains authorization for a booking through the consent or the override path.
// The path is fixed by the booking's OTPOverridden flag.
type ConsentResolver struct {
	gate otp.OTPGateInterface
}

// NewConsentResolver creates a resolver on top of an OTP gate.
func NewConsentResolver(gate otp.OTPGateInterface) *ConsentResolver {
	return &ConsentResolver{gate: gate}
}

// PurposeFor returns the OTP purpose that authorizes booking.
func PurposeFor(booking model.Booking) otpmodel.Purpose {
	if booking.OTPOverridden {
		return otpmodel.PurposeOverride
	}
	return otpmodel.PurposeConsent
}

// Request issues an authorization code for the session. Any earlier code is superseded.
// The caller must hold s.mu.
func (r *ConsentResolver) Request(ctx context.Context, s *Session) (*model.OTPPromptResponse, *serviceerror.ServiceError) {
	if s.lifecycle.State() != model.StateAwaitingAuthorization {
		return nil, invalidStateError(fmt.Errorf("%w: authorization cannot be requested in %s",
			ErrInvalidTransition, s.lifecycle.State()))
	}

	purpose := PurposeFor(s.booking)
	issued, err := r.gate.RequestOTP(ctx, s.booking.BookingNumber, purpose)
	if err != nil {
		return nil, err
	}

	s.authorization = &model.ConsentAttempt{
		BookingNumber: s.booking.BookingNumber,
		Purpose:       purpose,
		IssuedCode:    issued.Code,
		IssuedAt:      issued.IssuedAt,
	}

	return &model.OTPPromptResponse{
		BookingNumber: s.booking.BookingNumber,
		Purpose:       purpose,
		Code:          issued.Code,
		Delivery:      issued.Delivery,
		State:         s.lifecycle.State(),
	}, nil
}

// Verify validates code for the outstanding attempt. On success consent advances one step and
// override advances two. A mismatch keeps the session where it was. The caller must hold s.mu.
func (r *ConsentResolver) Verify(
	ctx context.Context,
	s *Session,
	code string,
	actor string,
) (*model.VerificationResponse, *serviceerror.ServiceError) {
	if s.lifecycle.State() != model.StateAwaitingAuthorization {
		return nil, invalidStateError(fmt.Errorf("%w: authorization cannot be verified in %s",
			ErrInvalidTransition, s.lifecycle.State()))
	}
	if s.authorization == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.MissingPrerequisiteError,
			"no authorization code has been requested for this booking")
	}

	purpose := PurposeFor(s.booking)
	result, err := r.gate.ValidateOTP(ctx, s.booking.BookingNumber, purpose, code)
	if err != nil {
		return nil, err
	}

	response := &model.VerificationResponse{
		BookingNumber: s.booking.BookingNumber,
		Purpose:       purpose,
		Verified:      result.Verified,
		Message:       result.Message,
		State:         s.lifecycle.State(),
	}
	if !result.Verified {
		return response, nil
	}

	steps, trigger := 1, model.TriggerConsentVerified
	if purpose == otpmodel.PurposeOverride {
		steps, trigger = 2, model.TriggerOverrideVerified
	}
	t, tErr := s.lifecycle.Authorize(steps, trigger)
	if tErr != nil {
		return nil, invalidStateError(tErr)
	}

	if purpose == otpmodel.PurposeOverride {
		s.overrideVerified = true
	} else {
		s.consentVerified = true
	}
	s.authorization = nil
	s.record(ctx, t, actor, result.Message)

	log.GetLogger().Info("Booking authorized",
		log.String(log.LoggerKeyComponentName, "ConsentResolver"),
		log.String("booking_number", s.booking.BookingNumber),
		log.String("purpose", purpose.String()),
		log.String("state", t.To.String()))

	response.StepsAdvanced = steps
	response.State = t.To
	return response, nil
}

// Cancel discards the outstanding authorization code. The session returns to its pre-request state.
// The caller must hold s.mu.
func (r *ConsentResolver) Cancel(ctx context.Context, s *Session) *serviceerror.ServiceError {
	if s.authorization == nil {
		return nil
	}
	if err := r.gate.Discard(ctx, s.booking.BookingNumber, s.authorization.Purpose); err != nil {
		return err
	}
	s.authorization = nil
	return nil
}
