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
	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/log"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

const defaultCancelReason = "fulfillment cancelled by operator"

// FulfillmentGate confirms, through a fulfillment OTP, that the booked service was performed.
type FulfillmentGate struct {
	gate otp.OTPGateInterface
}

// NewFulfillmentGate creates a fulfillment gate on top of an OTP gate.
func NewFulfillmentGate(gate otp.OTPGateInterface) *FulfillmentGate {
	return &FulfillmentGate{gate: gate}
}

// Proceed takes the automatic Authorized to AwaitingFulfillment step if it is still pending.
// The caller must hold s.mu.
func (f *FulfillmentGate) Proceed(ctx context.Context, s *Session) *serviceerror.ServiceError {
	if s.lifecycle.State() != model.StateAuthorized {
		return nil
	}
	t, err := s.lifecycle.Proceed()
	if err != nil {
		return invalidStateError(err)
	}
	s.record(ctx, t, constants.SystemActor, "")
	return nil
}

// Request issues a fulfillment code, superseding any earlier one. The caller must hold s.mu.
func (f *FulfillmentGate) Request(ctx context.Context, s *Session) (*model.OTPPromptResponse, *serviceerror.ServiceError) {
	if err := f.requireNotRejected(s); err != nil {
		return nil, err
	}
	if err := f.Proceed(ctx, s); err != nil {
		return nil, err
	}
	if err := f.requireAwaiting(s, "requested"); err != nil {
		return nil, err
	}

	issued, err := f.gate.RequestOTP(ctx, s.booking.BookingNumber, otpmodel.PurposeFulfillment)
	if err != nil {
		return nil, err
	}

	s.fulfillment = &model.ConsentAttempt{
		BookingNumber: s.booking.BookingNumber,
		Purpose:       otpmodel.PurposeFulfillment,
		IssuedCode:    issued.Code,
		IssuedAt:      issued.IssuedAt,
	}
	s.failure = nil

	return &model.OTPPromptResponse{
		BookingNumber: s.booking.BookingNumber,
		Purpose:       otpmodel.PurposeFulfillment,
		Code:          issued.Code,
		Delivery:      issued.Delivery,
		State:         s.lifecycle.State(),
	}, nil
}

// Verify validates a fulfillment code. A mismatch leaves the booking in AwaitingFulfillment.
// The caller must hold s.mu.
func (f *FulfillmentGate) Verify(
	ctx context.Context,
	s *Session,
	code string,
	actor string,
) (*model.VerificationResponse, *serviceerror.ServiceError) {
	if err := f.requireAwaiting(s, "verified"); err != nil {
		return nil, err
	}
	if err := f.requireNotRejected(s); err != nil {
		return nil, err
	}
	if s.fulfillment == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.MissingPrerequisiteError,
			"no fulfillment code has been requested for this booking")
	}

	result, err := f.gate.ValidateOTP(ctx, s.booking.BookingNumber, otpmodel.PurposeFulfillment, code)
	if err != nil {
		return nil, err
	}

	response := &model.VerificationResponse{
		BookingNumber: s.booking.BookingNumber,
		Purpose:       otpmodel.PurposeFulfillment,
		Verified:      result.Verified,
		Message:       result.Message,
		State:         s.lifecycle.State(),
	}
	if !result.Verified {
		return response, nil
	}

	t, tErr := s.lifecycle.Fulfill()
	if tErr != nil {
		return nil, invalidStateError(tErr)
	}
	s.fulfillment = nil
	s.record(ctx, t, actor, result.Message)

	log.GetLogger().Info("Booking fulfilled",
		log.String(log.LoggerKeyComponentName, "FulfillmentGate"),
		log.String("booking_number", s.booking.BookingNumber))

	response.StepsAdvanced = 1
	response.State = t.To
	return response, nil
}

// Cancel abandons fulfillment. It is recorded as a reported failure and is not retried;
// the booking stays in AwaitingFulfillment. The caller must hold s.mu.
func (f *FulfillmentGate) Cancel(ctx context.Context, s *Session, reason, actor string) *serviceerror.ServiceError {
	if err := f.Proceed(ctx, s); err != nil {
		return err
	}
	if err := f.requireAwaiting(s, "cancelled"); err != nil {
		return err
	}

	if s.fulfillment != nil {
		if err := f.gate.Discard(ctx, s.booking.BookingNumber, otpmodel.PurposeFulfillment); err != nil {
			return err
		}
		s.fulfillment = nil
	}

	if reason == "" {
		reason = defaultCancelReason
	}
	s.failure = &model.FulfillmentFailure{Reason: reason, ReportedAt: utils.GetCurrentTimeMillis()}
	state := s.lifecycle.State()
	s.writeAudit(ctx, &state, state, actor, reason)

	log.GetLogger().Warn("Fulfillment failure reported",
		log.String(log.LoggerKeyComponentName, "FulfillmentGate"),
		log.String("booking_number", s.booking.BookingNumber),
		log.String("reason", reason))
	return nil
}

// requireNotRejected refuses to fulfil a booking the backend has since rejected.
func (f *FulfillmentGate) requireNotRejected(s *Session) *serviceerror.ServiceError {
	if s.booking.ApprovalStatus == model.ApprovalRejected {
		return serviceerror.CustomServiceError(serviceerror.InvalidStateError,
			fmt.Sprintf("booking %s has been rejected and cannot be fulfilled", s.booking.BookingNumber))
	}
	return nil
}

func (f *FulfillmentGate) requireAwaiting(s *Session, action string) *serviceerror.ServiceError {
	if s.lifecycle.State() != model.StateAwaitingFulfillment {
		return invalidStateError(fmt.Errorf("%w: fulfillment cannot be %s in %s",
			ErrInvalidTransition, action, s.lifecycle.State()))
	}
	return nil
}
