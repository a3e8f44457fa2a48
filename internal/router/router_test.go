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

package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/booking-workflow-api/internal/backend"
	"github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/otp"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/constants"
)

type emptyBackend struct{}

func (emptyBackend) CreateBooking(context.Context, model.CreateWorkflowRequest) (*backend.CreatedBooking, error) {
	return nil, backend.ErrUnavailable
}

func (emptyBackend) ListBookings(context.Context, backend.Filter) ([]model.Booking, error) {
	return []model.Booking{}, nil
}

func (emptyBackend) ApproveBooking(context.Context, string) error { return nil }

func (emptyBackend) RejectBooking(context.Context, string) error { return nil }

func newEngine(t *testing.T, cors bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		OTP: config.OTPConfig{
			Provider: config.OTPProviderLocal,
			Store:    config.OTPStoreMemory,
			HashCost: 4,
			Delivery: config.OTPDelivery{Mode: config.OTPDeliveryEcho},
		},
		CORS: config.CORSConfig{
			Enabled:        cors,
			AllowedOrigins: []string{"https://ops.example.org"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		},
	}
	gate, err := otp.NewGate(&cfg.OTP, otp.Backing{})
	require.NoError(t, err)

	return SetupRouter(cfg, Dependencies{Gate: gate, Backend: emptyBackend{}})
}

func TestSetupRouter_HealthCarriesCorrelationID(t *testing.T) {
	engine := newEngine(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(constants.CorrelationIDHeaderName, "corr-1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "corr-1", rec.Header().Get(constants.CorrelationIDHeaderName))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestSetupRouter_MountsModulesUnderAPIBase(t *testing.T) {
	engine := newEngine(t, false)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/otp/consent/request",
		strings.NewReader(`{"bookingNumber":"B-1"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workflows/B-404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestSetupRouter_CORSPreflight(t *testing.T) {
	engine := newEngine(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil)
	req.Header.Set("Origin", "https://ops.example.org")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://ops.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}
