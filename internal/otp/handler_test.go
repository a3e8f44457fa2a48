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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
)

func newTestRouter(t *testing.T) (*gin.Engine, *otpGate) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gate := newOTPGate(newMemoryStore(), echoDeliverer{}, GateOptions{HashCost: bcrypt.MinCost})
	gate.generate = sequenceGenerator("482913")

	engine := gin.New()
	Initialize(engine.Group("/api/v1"), gate)
	return engine, gate
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RequestThenValidate(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(engine, http.MethodPost, "/api/v1/otp/consent/request", `{"bookingNumber":"B-100"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var issued model.IssueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
	assert.Equal(t, "482913", issued.Code)

	rec = doJSON(engine, http.MethodPost, "/api/v1/otp/consent/validate", `{"bookingNumber":"B-100","otpCode":"482913"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Verified)

	rec = doJSON(engine, http.MethodGet, "/api/v1/authorizations/B-100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authorized":true`)
}

func TestHandler_MismatchIsNotAnHTTPError(t *testing.T) {
	engine, _ := newTestRouter(t)
	doJSON(engine, http.MethodPost, "/api/v1/otp/override/request", `{"bookingNumber":"B-200"}`)

	rec := doJSON(engine, http.MethodPost, "/api/v1/otp/override/validate", `{"bookingNumber":"B-200","otpCode":"000000"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"verified":false`)
}

func TestHandler_RejectsUnknownPurpose(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(engine, http.MethodPost, "/api/v1/otp/payment/request", `{"bookingNumber":"B-100"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_otp_purpose")
}

func TestHandler_RequiresBookingNumber(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(engine, http.MethodPost, "/api/v1/otp/consent/request", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BookingNumber is required")
}

func TestHandler_Discard(t *testing.T) {
	engine, _ := newTestRouter(t)
	doJSON(engine, http.MethodPost, "/api/v1/otp/fulfillment/request", `{"bookingNumber":"B-300"}`)

	rec := doJSON(engine, http.MethodDelete, "/api/v1/otp/fulfillment/B-300", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(engine, http.MethodPost, "/api/v1/otp/fulfillment/validate", `{"bookingNumber":"B-300","otpCode":"482913"}`)
	assert.Contains(t, rec.Body.String(), MsgNoOutstandingCode)
}
