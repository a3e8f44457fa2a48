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

package bulk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/booking-workflow-api/internal/backend"
	bookingmodel "github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/bulk/model"
	"github.com/wso2/booking-workflow-api/internal/system/config"
)

// stubBackend approves everything except the numbers listed in fail.
type stubBackend struct {
	mu       sync.Mutex
	bookings []bookingmodel.Booking
	fail     map[string]bool
	filters  []backend.Filter
}

func (s *stubBackend) ListBookings(_ context.Context, filter backend.Filter) ([]bookingmodel.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filter)
	return append([]bookingmodel.Booking{}, s.bookings...), nil
}

func (s *stubBackend) ApproveBooking(_ context.Context, bookingNumber string) error {
	return s.decide(bookingNumber, bookingmodel.ApprovalApproved)
}

func (s *stubBackend) RejectBooking(_ context.Context, bookingNumber string) error {
	return s.decide(bookingNumber, bookingmodel.ApprovalRejected)
}

func (s *stubBackend) decide(bookingNumber string, status bookingmodel.ApprovalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[bookingNumber] {
		return &backend.StatusError{StatusCode: http.StatusConflict, Message: "already decided"}
	}
	for i := range s.bookings {
		if s.bookings[i].BookingNumber == bookingNumber {
			s.bookings[i].ApprovalStatus = status
		}
	}
	return nil
}

func newBulkRouter(client BookingBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Initialize(engine.Group("/api/v1"), config.BulkConfig{}, client)
	return engine
}

func send(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandler_SelectThenBulkApprove(t *testing.T) {
	client := &stubBackend{
		bookings: []bookingmodel.Booking{pending("1", "B-1"), pending("2", "B-2"), pending("3", "B-3")},
		fail:     map[string]bool{"B-2": true},
	}
	engine := newBulkRouter(client)

	rec := send(engine, http.MethodGet, "/api/v1/bookings?approvalStatus=pending", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view model.BoardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Bookings, 3)
	assert.Equal(t, "pending", view.Filter.ApprovalStatus)

	rec = send(engine, http.MethodPut, "/api/v1/bookings/selection", `{"bookingIds":["1","2","3"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(engine, http.MethodPost, "/api/v1/bookings/bulk/approve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary model.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.Refreshed)

	client.mu.Lock()
	assert.Len(t, client.filters, 2)
	assert.Equal(t, bookingmodel.ApprovalApproved, client.bookings[2].ApprovalStatus)
	client.mu.Unlock()
}

func TestHandler_BulkWithoutSelection(t *testing.T) {
	engine := newBulkRouter(&stubBackend{})

	rec := send(engine, http.MethodPost, "/api/v1/bookings/bulk/reject", `{"bookingIds":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_selection")
}

func TestHandler_RevenueOfLoadedSet(t *testing.T) {
	booking := pending("1", "B-1")
	booking.LineItems = []bookingmodel.ServiceLineItem{{SHARate: "1,200.50", VendorShare: "200"}}
	engine := newBulkRouter(&stubBackend{bookings: []bookingmodel.Booking{booking}})

	require.Equal(t, http.StatusOK, send(engine, http.MethodGet, "/api/v1/bookings", "").Code)

	rec := send(engine, http.MethodGet, "/api/v1/bookings/revenue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalSha":"1200.5"`)
	assert.Contains(t, rec.Body.String(), `"vendorShareOfSha":"0.1666"`)
}
