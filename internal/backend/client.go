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

// Package backend is the REST client for the booking backend that owns bookings and their OTPs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/log"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// ErrUnavailable marks transport failures and 5xx responses. The caller may retry.
var ErrUnavailable = errors.New("booking backend unavailable")

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("booking backend returned status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnavailable) match server-side failures.
func (e *StatusError) Unwrap() error {
	if e.StatusCode >= http.StatusInternalServerError {
		return ErrUnavailable
	}
	return nil
}

// Filter narrows a booking listing. Empty fields are not sent.
type Filter struct {
	BookingStatus  string `json:"bookingStatus,omitempty" form:"bookingStatus"`
	ApprovalStatus string `json:"approvalStatus,omitempty" form:"approvalStatus"`
}

// CreatedBooking is a new booking plus the consent code the backend issued with it, if any.
type CreatedBooking struct {
	Booking     model.Booking
	InitialCode string
}

// OTPIssue is the backend's answer to an OTP request.
type OTPIssue struct {
	Code string `json:"otpCode"`
}

// VerifyOutcome is a classified verification response. A mismatch is Verified=false, not an error.
type VerifyOutcome struct {
	Verified bool
	Message  string
}

type createBookingPayload struct {
	PatientRef     string `json:"patientId"`
	FacilityRef    string `json:"facilityId"`
	ServiceRef     string `json:"serviceId"`
	PaymentModeRef string `json:"paymentModeId"`
	ScheduledAt    string `json:"scheduledAt"`
	OTPOverridden  bool   `json:"otpOverridden"`
}

type verifyPayload struct {
	BookingNumber string `json:"bookingNumber"`
	Code          string `json:"otpCode"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client talks to the booking backend.
type Client struct {
	httpClient *http.Client
	config     *config.BackendConfig
}

// NewClient creates a backend client with a pooled transport.
func NewClient(cfg *config.BackendConfig) *Client {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
	}
}

// CreateBooking creates a booking and returns it normalized.
func (c *Client) CreateBooking(ctx context.Context, req model.CreateWorkflowRequest) (*CreatedBooking, error) {
	payload := createBookingPayload{
		PatientRef:     req.PatientRef,
		FacilityRef:    req.FacilityRef,
		ServiceRef:     req.ServiceRef,
		PaymentModeRef: req.PaymentModeRef,
		ScheduledAt:    req.ScheduledAt,
		OTPOverridden:  req.OverrideRequested,
	}

	status, body, err := c.do(ctx, http.MethodPost, c.endpoint(c.config.Endpoints.CreateBooking, ""), payload)
	if err != nil {
		return nil, err
	}
	if err := statusErr(status, body); err != nil {
		return nil, err
	}

	var raw model.RawBooking
	if err := decodeEnveloped(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode created booking: %w", err)
	}
	booking := model.Normalize(raw)
	// The backend owns the flag; a missing echo keeps the requested mode.
	if req.OverrideRequested {
		booking.OTPOverridden = true
	}
	return &CreatedBooking{Booking: booking, InitialCode: raw.OTPCode}, nil
}

// ListBookings returns the bookings matching filter, normalized.
func (c *Client) ListBookings(ctx context.Context, filter Filter) ([]model.Booking, error) {
	target := c.endpoint(c.config.Endpoints.ListBookings, "")
	query := url.Values{}
	if filter.BookingStatus != "" {
		query.Set("bookingStatus", filter.BookingStatus)
	}
	if filter.ApprovalStatus != "" {
		query.Set("approvalStatus", filter.ApprovalStatus)
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	status, body, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if err := statusErr(status, body); err != nil {
		return nil, err
	}

	var raws []model.RawBooking
	if err := decodeEnveloped(body, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode booking list: %w", err)
	}
	return model.NormalizeAll(raws), nil
}

// RequestConsentOTP asks the backend to issue a consent code.
func (c *Client) RequestConsentOTP(ctx context.Context, bookingNumber string) (*OTPIssue, error) {
	return c.requestOTP(ctx, c.config.Endpoints.RequestConsentOTP, bookingNumber)
}

// VerifyConsentOTP verifies a consent code.
func (c *Client) VerifyConsentOTP(ctx context.Context, bookingNumber, code string) (*VerifyOutcome, error) {
	return c.verifyOTP(ctx, c.config.Endpoints.VerifyConsentOTP, bookingNumber, code, "")
}

// RequestOverrideOTP asks the backend to issue a manager override code.
func (c *Client) RequestOverrideOTP(ctx context.Context, bookingNumber string) (*OTPIssue, error) {
	return c.requestOTP(ctx, c.config.Endpoints.RequestOverrideOTP, bookingNumber)
}

// VerifyOverrideOTP verifies an override code. Success requires the configured success phrase.
func (c *Client) VerifyOverrideOTP(ctx context.Context, bookingNumber, code string) (*VerifyOutcome, error) {
	return c.verifyOTP(ctx, c.config.Endpoints.VerifyOverrideOTP, bookingNumber, code, c.config.OverrideSuccessMessage)
}

// RequestFulfillmentOTP asks the backend to issue a fulfillment code.
func (c *Client) RequestFulfillmentOTP(ctx context.Context, bookingNumber string) (*OTPIssue, error) {
	return c.requestOTP(ctx, c.config.Endpoints.RequestFulfillmentOTP, bookingNumber)
}

// VerifyFulfillmentOTP verifies a fulfillment code.
func (c *Client) VerifyFulfillmentOTP(ctx context.Context, bookingNumber, code string) (*VerifyOutcome, error) {
	return c.verifyOTP(ctx, c.config.Endpoints.VerifyFulfillmentOTP, bookingNumber, code, "")
}

// ApproveBooking sets the booking's approval status to approved.
func (c *Client) ApproveBooking(ctx context.Context, bookingNumber string) error {
	return c.decide(ctx, c.config.Endpoints.ApproveBooking, bookingNumber)
}

// RejectBooking sets the booking's approval status to rejected.
func (c *Client) RejectBooking(ctx context.Context, bookingNumber string) error {
	return c.decide(ctx, c.config.Endpoints.RejectBooking, bookingNumber)
}

// Close closes idle connections.
func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}

func (c *Client) requestOTP(ctx context.Context, endpoint, bookingNumber string) (*OTPIssue, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.endpoint(endpoint, bookingNumber),
		map[string]string{"bookingNumber": bookingNumber})
	if err != nil {
		return nil, err
	}
	if err := statusErr(status, body); err != nil {
		return nil, err
	}

	var issue OTPIssue
	if len(bytes.TrimSpace(body)) > 0 {
		if err := decodeEnveloped(body, &issue); err != nil {
			return nil, fmt.Errorf("failed to decode otp response: %w", err)
		}
	}
	return &issue, nil
}

// verifyOTP classifies the response: 2xx verifies (and must carry expectMessage when set),
// 4xx is a mismatch, 5xx and transport failures are errors.
func (c *Client) verifyOTP(ctx context.Context, endpoint, bookingNumber, code, expectMessage string) (*VerifyOutcome, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.endpoint(endpoint, bookingNumber),
		verifyPayload{BookingNumber: bookingNumber, Code: code})
	if err != nil {
		return nil, err
	}

	message := responseMessage(body)
	switch {
	case status >= http.StatusInternalServerError:
		return nil, &StatusError{StatusCode: status, Message: message}
	case status >= http.StatusBadRequest:
		return &VerifyOutcome{Verified: false, Message: message}, nil
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return nil, &StatusError{StatusCode: status, Message: message}
	}

	if expectMessage != "" && message != expectMessage {
		log.GetLogger().Warn("Backend verification succeeded with unexpected message",
			log.String(log.LoggerKeyComponentName, "BackendClient"),
			log.String("booking_number", bookingNumber),
			log.String("message", message))
		return &VerifyOutcome{Verified: false, Message: message}, nil
	}
	return &VerifyOutcome{Verified: true, Message: message}, nil
}

func (c *Client) decide(ctx context.Context, endpoint, bookingNumber string) error {
	status, body, err := c.do(ctx, http.MethodPost, c.endpoint(endpoint, bookingNumber),
		map[string]string{"bookingNumber": bookingNumber})
	if err != nil {
		return err
	}
	return statusErr(status, body)
}

func (c *Client) endpoint(path, bookingNumber string) string {
	return c.config.GetEndpointURL(path, url.PathEscape(bookingNumber))
}

// do performs a JSON round trip. Transport failures are wrapped in ErrUnavailable.
func (c *Client) do(ctx context.Context, method, target string, payload interface{}) (int, []byte, error) {
	logger := log.GetLogger().With(
		log.String(log.LoggerKeyComponentName, "BackendClient"),
		log.String("method", method),
		log.String("url", target),
	)

	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	}
	req.Header.Set("Accept", constants.ContentTypeJSON)
	if correlationID := utils.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(constants.CorrelationIDHeaderName, correlationID)
	}

	logger.Debug("Calling booking backend")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		logger.Error("Booking backend call failed", log.Error(err), log.String("duration", duration.String()))
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	logger.Debug("Booking backend response received",
		log.Int("status_code", resp.StatusCode), log.String("duration", duration.String()))
	if resp.StatusCode >= http.StatusBadRequest {
		logger.Warn("Booking backend returned non-success status",
			log.Int("status_code", resp.StatusCode), log.String("response", string(body)))
	}
	return resp.StatusCode, body, nil
}

func statusErr(status int, body []byte) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}
	return &StatusError{StatusCode: status, Message: responseMessage(body)}
}

func responseMessage(body []byte) string {
	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if resp.Message != "" {
			return resp.Message
		}
		if resp.Error != "" {
			return resp.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// decodeEnveloped decodes body into v, accepting either the bare value or {"data": value}.
func decodeEnveloped(body []byte, v interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 &&
			!bytes.Equal(envelope.Data, []byte("null")) {
			return json.Unmarshal(envelope.Data, v)
		}
	}
	return json.Unmarshal(trimmed, v)
}
