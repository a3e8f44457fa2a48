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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
	otpmodel "github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

const overridePhrase = "Override OTP verified successfully"

func testConfig(baseURL string) *config.BackendConfig {
	return &config.BackendConfig{
		BaseURL:                baseURL,
		OverrideSuccessMessage: overridePhrase,
		Endpoints: config.BackendEndpoints{
			CreateBooking:         "/bookings",
			ListBookings:          "/bookings",
			RequestConsentOTP:     "/bookings/{bookingNumber}/consent-otp",
			VerifyConsentOTP:      "/bookings/{bookingNumber}/consent-otp/verify",
			RequestOverrideOTP:    "/bookings/{bookingNumber}/override-otp",
			VerifyOverrideOTP:     "/bookings/{bookingNumber}/override-otp/verify",
			RequestFulfillmentOTP: "/bookings/{bookingNumber}/fulfillment-otp",
			VerifyFulfillmentOTP:  "/bookings/{bookingNumber}/fulfillment-otp/verify",
			ApproveBooking:        "/bookings/{bookingNumber}/approve",
			RejectBooking:         "/bookings/{bookingNumber}/reject",
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testConfig(server.URL))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestCreateBooking_NormalizesAndReturnsInitialCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings", r.URL.Path)
		assert.Equal(t, "corr-1", r.Header.Get("X-Correlation-ID"))

		var payload createBookingPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "P-1", payload.PatientRef)
		assert.False(t, payload.OTPOverridden)

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"_id":            "64f0",
			"bookingNumber":  "B-100",
			"approvalStatus": "pending",
			"otpCode":        "482913",
			"services": []map[string]interface{}{
				{"serviceCode": "CT", "tariff": 2500, "status": "completed"},
			},
		})
	})

	ctx := utils.WithCorrelationID(context.Background(), "corr-1")
	created, err := client.CreateBooking(ctx, model.CreateWorkflowRequest{
		PatientRef: "P-1", FacilityRef: "F-1", ServiceRef: "S-1", PaymentModeRef: "PM-1", ScheduledAt: "2025-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "482913", created.InitialCode)
	assert.Equal(t, "64f0", created.Booking.ID)
	assert.Equal(t, "B-100", created.Booking.BookingNumber)
	assert.Equal(t, model.ApprovalPending, created.Booking.ApprovalStatus)
	require.Len(t, created.Booking.LineItems, 1)
	assert.Equal(t, "2500", created.Booking.LineItems[0].SHARate)
	assert.True(t, created.Booking.LineItems[0].IsCompleted())
}

func TestCreateBooking_OverrideFlagIsKept(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": map[string]interface{}{"bookingNumber": "B-200"}})
	})

	created, err := client.CreateBooking(context.Background(), model.CreateWorkflowRequest{OverrideRequested: true})
	require.NoError(t, err)
	assert.Equal(t, "B-200", created.Booking.BookingNumber)
	assert.True(t, created.Booking.OTPOverridden)
}

func TestListBookings_SendsFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "pending", r.URL.Query().Get("approvalStatus"))
		assert.Empty(t, r.URL.Query().Get("bookingStatus"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []map[string]interface{}{
			{"id": "1", "bookingNumber": "B-1", "approvalStatus": "pending"},
			{"id": "2", "bookingNumber": "B-2", "approvalStatus": "pending"},
		}})
	})

	bookings, err := client.ListBookings(context.Background(), Filter{ApprovalStatus: "pending"})
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "B-2", bookings[1].BookingNumber)
}

func TestListBookings_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": "1", "bookingNumber": "B-1"}})
	})

	bookings, err := client.ListBookings(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestVerifyOverrideOTP_Taxonomy(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		message      string
		wantVerified bool
		wantErr      bool
	}{
		{name: "exact phrase", status: http.StatusOK, message: overridePhrase, wantVerified: true},
		{name: "unexpected phrase", status: http.StatusOK, message: "ok", wantVerified: false},
		{name: "client error is a mismatch", status: http.StatusBadRequest, message: "Invalid OTP", wantVerified: false},
		{name: "server error", status: http.StatusServiceUnavailable, message: "down", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/bookings/B-200/override-otp/verify", r.URL.Path)
				writeJSON(w, tc.status, map[string]string{"message": tc.message})
			})

			outcome, err := client.VerifyOverrideOTP(context.Background(), "B-200", "123456")
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantVerified, outcome.Verified)
			assert.Equal(t, tc.message, outcome.Message)
		})
	}
}

func TestVerifyConsentOTP_AnyMessageVerifies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Consent verified"})
	})

	outcome, err := client.VerifyConsentOTP(context.Background(), "B-100", "482913")
	require.NoError(t, err)
	assert.True(t, outcome.Verified)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(testConfig(server.URL))
	server.Close()

	err := client.ApproveBooking(context.Background(), "B-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestApproveAndReject(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/bookings/B-404/reject" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "booking not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.ApproveBooking(context.Background(), "B-1"))
	err := client.RejectBooking(context.Background(), "B-404")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "booking not found", statusErr.Message)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/bookings/B-1/approve", "/bookings/B-404/reject"}, paths)
}

func TestToServiceError(t *testing.T) {
	assert.Nil(t, ToServiceError(nil, "approve booking"))
	assert.Equal(t, codes.BackendUnavailable, ToServiceError(ErrUnavailable, "approve booking").Code)
	assert.Equal(t, codes.BackendUnavailable,
		ToServiceError(&StatusError{StatusCode: http.StatusBadGateway}, "approve booking").Code)
	assert.Equal(t, codes.BookingNotFound,
		ToServiceError(&StatusError{StatusCode: http.StatusNotFound}, "approve booking").Code)
	assert.Equal(t, codes.ConflictError,
		ToServiceError(&StatusError{StatusCode: http.StatusConflict}, "approve booking").Code)
	assert.Equal(t, codes.InvalidRequest,
		ToServiceError(&StatusError{StatusCode: http.StatusUnprocessableEntity}, "approve booking").Code)
	assert.Equal(t, codes.InternalServerError, ToServiceError(errors.New("boom"), "approve booking").Code)
}

func TestRemoteGate_ConsentRoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bookings/B-100/consent-otp":
			writeJSON(w, http.StatusOK, map[string]string{"otpCode": "482913"})
		case "/bookings/B-100/consent-otp/verify":
			var payload verifyPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			if payload.Code != "482913" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid OTP"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "Consent verified"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	gate := NewRemoteGate(client)
	ctx := context.Background()

	issued, svcErr := gate.RequestOTP(ctx, "B-100", otpmodel.PurposeConsent)
	require.Nil(t, svcErr)
	assert.Equal(t, "482913", issued.Code)

	result, svcErr := gate.ValidateOTP(ctx, "B-100", otpmodel.PurposeConsent, "000000")
	require.Nil(t, svcErr)
	assert.False(t, result.Verified)

	auth, _ := gate.GetAuthorization(ctx, "B-100")
	assert.False(t, auth.Authorized)

	result, svcErr = gate.ValidateOTP(ctx, "B-100", otpmodel.PurposeConsent, "482913")
	require.Nil(t, svcErr)
	assert.True(t, result.Verified)

	auth, _ = gate.GetAuthorization(ctx, "B-100")
	assert.True(t, auth.Authorized)
	assert.Equal(t, otpmodel.PurposeConsent, auth.Purpose)
}

func TestRemoteGate_FulfillmentGrantsNoAuthorization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Fulfilled"})
	})
	gate := NewRemoteGate(client)

	result, svcErr := gate.ValidateOTP(context.Background(), "B-1", otpmodel.PurposeFulfillment, "111111")
	require.Nil(t, svcErr)
	assert.True(t, result.Verified)

	auth, _ := gate.GetAuthorization(context.Background(), "B-1")
	assert.False(t, auth.Authorized)
}

func TestRemoteGate_BackendDownIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	gate := NewRemoteGate(client)

	_, svcErr := gate.RequestOTP(context.Background(), "B-1", otpmodel.PurposeOverride)
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.BackendUnavailable, svcErr.Code)
}

func TestRemoteGate_RejectsUnknownPurpose(t *testing.T) {
	gate := NewRemoteGate(nil)
	_, svcErr := gate.RequestOTP(context.Background(), "B-1", otpmodel.Purpose("refund"))
	require.NotNil(t, svcErr)
	assert.Equal(t, codes.InvalidRequest, svcErr.Code)
	assert.NotNil(t, gate.Discard(context.Background(), "", otpmodel.PurposeConsent))
}
