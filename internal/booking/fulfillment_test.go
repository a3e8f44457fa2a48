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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/otp"
	"github.com/wso2/booking-workflow-api/internal/otp/mocks"
	otpmodel "github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
)

func newLocalGate(t *testing.T) otp.OTPGateInterface {
	t.Helper()
	gate, err := otp.NewGate(&config.OTPConfig{
		Store:    config.OTPStoreMemory,
		HashCost: bcrypt.MinCost,
		Delivery: config.OTPDelivery{Mode: config.OTPDeliveryEcho},
	}, otp.Backing{})
	require.NoError(t, err)
	return gate
}

// authorizedSession returns a session that has passed consent and is waiting in Authorized.
func authorizedSession(t *testing.T, gate otp.OTPGateInterface, bookingNumber string) *Session {
	t.Helper()
	ctx := context.Background()
	session, _, err := NewSessionManager(newMemoryAuditStore()).Open(ctx,
		model.Booking{BookingNumber: bookingNumber, ApprovalStatus: model.ApprovalPending}, "op")
	require.NoError(t, err)

	resolver := NewConsentResolver(gate)
	prompt, svcErr := resolver.Request(ctx, session)
	require.Nil(t, svcErr)
	result, svcErr := resolver.Verify(ctx, session, prompt.Code, "op")
	require.Nil(t, svcErr)
	require.True(t, result.Verified)
	require.Equal(t, model.StateAuthorized, session.lifecycle.State())
	return session
}

func TestFulfillment_StaleCodeIsRejectedTwice(t *testing.T) {
	ctx := context.Background()
	gate := newLocalGate(t)
	session := authorizedSession(t, gate, "B-100")
	fulfillment := NewFulfillmentGate(gate)

	first, svcErr := fulfillment.Request(ctx, session)
	require.Nil(t, svcErr)
	assert.Equal(t, model.StateAwaitingFulfillment, first.State)

	second, svcErr := fulfillment.Request(ctx, session)
	require.Nil(t, svcErr)
	for second.Code == first.Code {
		second, svcErr = fulfillment.Request(ctx, session)
		require.Nil(t, svcErr)
	}

	for i := 0; i < 2; i++ {
		result, svcErr := fulfillment.Verify(ctx, session, first.Code, "op")
		require.Nil(t, svcErr)
		assert.False(t, result.Verified, "attempt %d", i+1)
		assert.Equal(t, model.StateAwaitingFulfillment, result.State)
	}
	assert.Equal(t, model.StateAwaitingFulfillment, session.lifecycle.State())
	assert.NotNil(t, session.fulfillment)
}

func TestFulfillment_LatestCodeFulfills(t *testing.T) {
	ctx := context.Background()
	gate := newLocalGate(t)
	session := authorizedSession(t, gate, "B-101")
	fulfillment := NewFulfillmentGate(gate)

	prompt, svcErr := fulfillment.Request(ctx, session)
	require.Nil(t, svcErr)

	result, svcErr := fulfillment.Verify(ctx, session, prompt.Code, "op")
	require.Nil(t, svcErr)
	assert.True(t, result.Verified)
	assert.Equal(t, model.StateFulfilled, result.State)
	assert.Nil(t, session.fulfillment)

	_, svcErr = fulfillment.Request(ctx, session)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidTransition, svcErr.Code)
}

func TestFulfillment_VerifyWithoutRequest(t *testing.T) {
	ctx := context.Background()
	gate := newLocalGate(t)
	session := authorizedSession(t, gate, "B-102")
	fulfillment := NewFulfillmentGate(gate)

	// Still Authorized: the automatic step has not fired yet.
	_, svcErr := fulfillment.Verify(ctx, session, "123456", "op")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidTransition, svcErr.Code)

	require.Nil(t, fulfillment.Proceed(ctx, session))
	_, svcErr = fulfillment.Verify(ctx, session, "123456", "op")
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.MissingPrerequisite, svcErr.Code)
}

func TestFulfillment_CancelIsReportedFailure(t *testing.T) {
	ctx := context.Background()
	gate := new(mocks.MockOTPGate)
	audits := newMemoryAuditStore()
	session, _, err := NewSessionManager(audits).Open(ctx,
		model.Booking{BookingNumber: "B-103", OTPOverridden: true}, "op")
	require.NoError(t, err)

	gate.On("RequestOTP", mock.Anything, "B-103", otpmodel.PurposeOverride).
		Return(&otpmodel.IssueResponse{Code: "555555"}, nil).Once()
	gate.On("ValidateOTP", mock.Anything, "B-103", otpmodel.PurposeOverride, "555555").
		Return(&otpmodel.ValidationResult{Verified: true}, nil).Once()
	gate.On("RequestOTP", mock.Anything, "B-103", otpmodel.PurposeFulfillment).
		Return(&otpmodel.IssueResponse{Code: "666666"}, nil).Once()
	gate.On("Discard", mock.Anything, "B-103", otpmodel.PurposeFulfillment).Return(nil).Once()

	resolver := NewConsentResolver(gate)
	_, _ = resolver.Request(ctx, session)
	_, svcErr := resolver.Verify(ctx, session, "555555", "manager")
	require.Nil(t, svcErr)

	fulfillment := NewFulfillmentGate(gate)
	_, svcErr = fulfillment.Request(ctx, session)
	require.Nil(t, svcErr)

	require.Nil(t, fulfillment.Cancel(ctx, session, "", "op"))
	assert.Equal(t, model.StateAwaitingFulfillment, session.lifecycle.State())
	require.NotNil(t, session.failure)
	assert.Equal(t, defaultCancelReason, session.failure.Reason)
	assert.Nil(t, session.fulfillment)

	view := session.view()
	require.NotNil(t, view.FulfillmentFailure)

	entries, _ := audits.ListByBookingNumber(ctx, "B-103")
	last := entries[len(entries)-1]
	require.NotNil(t, last.Reason)
	assert.Equal(t, defaultCancelReason, *last.Reason)
	assert.Equal(t, string(model.StateAwaitingFulfillment), last.CurrentState)
	gate.AssertExpectations(t)
}
