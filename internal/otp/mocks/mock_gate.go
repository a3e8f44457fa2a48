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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
)

// MockOTPGate is a mock implementation of OTPGateInterface
type MockOTPGate struct {
	mock.Mock
}

func (m *MockOTPGate) RequestOTP(ctx context.Context, bookingNumber string, purpose model.Purpose) (*model.IssueResponse, *serviceerror.ServiceError) {
	args := m.Called(ctx, bookingNumber, purpose)
	var resp *model.IssueResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*model.IssueResponse)
	}
	return resp, serviceErr(args.Get(1))
}

func (m *MockOTPGate) ValidateOTP(ctx context.Context, bookingNumber string, purpose model.Purpose, code string) (*model.ValidationResult, *serviceerror.ServiceError) {
	args := m.Called(ctx, bookingNumber, purpose, code)
	var result *model.ValidationResult
	if args.Get(0) != nil {
		result = args.Get(0).(*model.ValidationResult)
	}
	return result, serviceErr(args.Get(1))
}

func (m *MockOTPGate) Discard(ctx context.Context, bookingNumber string, purpose model.Purpose) *serviceerror.ServiceError {
	args := m.Called(ctx, bookingNumber, purpose)
	return serviceErr(args.Get(0))
}

func (m *MockOTPGate) GetAuthorization(ctx context.Context, bookingNumber string) (*model.AuthorizationResponse, *serviceerror.ServiceError) {
	args := m.Called(ctx, bookingNumber)
	var resp *model.AuthorizationResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*model.AuthorizationResponse)
	}
	return resp, serviceErr(args.Get(1))
}

func serviceErr(v interface{}) *serviceerror.ServiceError {
	if v == nil {
		return nil
	}
	return v.(*serviceerror.ServiceError)
}
