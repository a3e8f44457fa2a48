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

	"github.com/wso2/booking-workflow-api/internal/backend"
	"github.com/wso2/booking-workflow-api/internal/booking/model"
	otpmodel "github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/revenue"
	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/log"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// BookingBackend is the part of the booking backend the workflow service uses.
type BookingBackend interface {
	CreateBooking(ctx context.Context, req model.CreateWorkflowRequest) (*backend.CreatedBooking, error)
	ListBookings(ctx context.Context, filter backend.Filter) ([]model.Booking, error)
}

// WorkflowServiceInterface drives booking workflow sessions.
type WorkflowServiceInterface interface {
	CreateWorkflow(ctx context.Context, req model.CreateWorkflowRequest, actor string) (*model.SessionView, *serviceerror.ServiceError)
	OpenWorkflow(ctx context.Context, bookingNumber, actor string) (*model.SessionView, *serviceerror.ServiceError)
	GetWorkflow(ctx context.Context, bookingNumber string) (*model.SessionView, *serviceerror.ServiceError)
	RequestAuthorization(ctx context.Context, bookingNumber string) (*model.OTPPromptResponse, *serviceerror.ServiceError)
	VerifyAuthorization(ctx context.Context, bookingNumber, code, actor string) (*model.VerificationResponse, *serviceerror.ServiceError)
	CancelAuthorization(ctx context.Context, bookingNumber string) (*model.SessionView, *serviceerror.ServiceError)
	ProceedToFulfillment(ctx context.Context, bookingNumber string) (*model.SessionView, *serviceerror.ServiceError)
	RequestFulfillment(ctx context.Context, bookingNumber string) (*model.OTPPromptResponse, *serviceerror.ServiceError)
	VerifyFulfillment(ctx context.Context, bookingNumber, code, actor string) (*model.VerificationResponse, *serviceerror.ServiceError)
	CancelFulfillment(ctx context.Context, bookingNumber, reason, actor string) (*model.SessionView, *serviceerror.ServiceError)
	GetRevenue(ctx context.Context, bookingNumber string) (*revenue.Totals, *serviceerror.ServiceError)
	GetAuditTrail(ctx context.Context, bookingNumber string) (*model.LifecycleAuditListResponse, *serviceerror.ServiceError)
}

// WorkflowOptions tunes the workflow service.
type WorkflowOptions struct {
	// AdoptInitialCode treats a consent code returned by booking creation as an outstanding
	// authorization attempt. Only meaningful when the backend also validates the codes.
	AdoptInitialCode bool
}

type workflowService struct {
	backend     BookingBackend
	sessions    *SessionManager
	resolver    *ConsentResolver
	fulfillment *FulfillmentGate
	audits      AuditStore
	opts        WorkflowOptions
}

func newWorkflowService(
	client BookingBackend,
	sessions *SessionManager,
	resolver *ConsentResolver,
	fulfillment *FulfillmentGate,
	audits AuditStore,
	opts WorkflowOptions,
) WorkflowServiceInterface {
	return &workflowService{
		backend:     client,
		sessions:    sessions,
		resolver:    resolver,
		fulfillment: fulfillment,
		audits:      audits,
		opts:        opts,
	}
}

// CreateWorkflow creates the booking on the backend and opens its session.
func (ws *workflowService) CreateWorkflow(
	ctx context.Context,
	req model.CreateWorkflowRequest,
	actor string,
) (*model.SessionView, *serviceerror.ServiceError) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.MissingPrerequisiteError, err.Error())
	}

	created, err := ws.backend.CreateBooking(ctx, req)
	if err != nil {
		return nil, backend.ToServiceError(err, "create booking")
	}
	if created.Booking.BookingNumber == "" {
		return nil, serviceerror.CustomServiceError(bookingCreationError, "created booking has no booking number")
	}

	session, _, openErr := ws.sessions.Open(ctx, created.Booking, actor)
	if openErr != nil {
		return nil, invalidStateError(openErr)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if ws.opts.AdoptInitialCode && created.InitialCode != "" && !session.booking.OTPOverridden &&
		session.lifecycle.State() == model.StateAwaitingAuthorization {
		session.authorization = &model.ConsentAttempt{
			BookingNumber: session.booking.BookingNumber,
			Purpose:       otpmodel.PurposeConsent,
			IssuedCode:    created.InitialCode,
			IssuedAt:      utils.GetCurrentTimeMillis(),
		}
	}

	workflowLogger(session.BookingNumber()).Info("Workflow created",
		log.Bool("otp_overridden", session.booking.OTPOverridden),
		log.String("state", session.lifecycle.State().String()))
	return session.view(), nil
}

// OpenWorkflow opens a session for a booking that already exists on the backend, or
// refreshes the approval status of one that is already open.
func (ws *workflowService) OpenWorkflow(ctx context.Context, bookingNumber, actor string) (*model.SessionView, *serviceerror.ServiceError) {
	if bookingNumber == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.MissingPrerequisiteError, "booking number is required")
	}
	existing, open := ws.sessions.Get(bookingNumber)

	bookings, err := ws.backend.ListBookings(ctx, backend.Filter{})
	if err != nil {
		if open {
			workflowLogger(bookingNumber).Warn("Could not refresh open workflow from backend", log.Error(err))
			return existing.View(), nil
		}
		return nil, backend.ToServiceError(err, "load booking")
	}
	for _, b := range bookings {
		if b.BookingNumber != bookingNumber {
			continue
		}
		session, _, openErr := ws.sessions.Open(ctx, b, actor)
		if openErr != nil {
			return nil, invalidStateError(openErr)
		}
		return session.View(), nil
	}

	if open {
		return existing.View(), nil
	}
	return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError,
		fmt.Sprintf("booking %s was not found", bookingNumber))
}

// GetWorkflow returns the session snapshot.
func (ws *workflowService) GetWorkflow(ctx context.Context, bookingNumber string) (*model.SessionView, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	return session.View(), nil
}

// RequestAuthorization issues a consent or override code depending on the booking's mode.
func (ws *workflowService) RequestAuthorization(ctx context.Context, bookingNumber string) (*model.OTPPromptResponse, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return ws.resolver.Request(ctx, session)
}

// VerifyAuthorization validates the operator-supplied authorization code.
func (ws *workflowService) VerifyAuthorization(
	ctx context.Context,
	bookingNumber, code, actor string,
) (*model.VerificationResponse, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return ws.resolver.Verify(ctx, session, code, actor)
}

// CancelAuthorization discards the outstanding authorization code.
func (ws *workflowService) CancelAuthorization(ctx context.Context, bookingNumber string) (*model.SessionView, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if err := ws.resolver.Cancel(ctx, session); err != nil {
		return nil, err
	}
	return session.view(), nil
}

// ProceedToFulfillment takes the pending Authorized to AwaitingFulfillment step explicitly.
func (ws *workflowService) ProceedToFulfillment(ctx context.Context, bookingNumber string) (*model.SessionView, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := ws.fulfillment.Proceed(ctx, session); err != nil {
		return nil, err
	}
	if err := ws.fulfillment.requireAwaiting(session, "started"); err != nil {
		return nil, err
	}
	return session.view(), nil
}

// RequestFulfillment issues a fulfillment code.
func (ws *workflowService) RequestFulfillment(ctx context.Context, bookingNumber string) (*model.OTPPromptResponse, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return ws.fulfillment.Request(ctx, session)
}

// VerifyFulfillment validates the fulfillment code.
func (ws *workflowService) VerifyFulfillment(
	ctx context.Context,
	bookingNumber, code, actor string,
) (*model.VerificationResponse, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return ws.fulfillment.Verify(ctx, session, code, actor)
}

// CancelFulfillment reports a fulfillment failure.
func (ws *workflowService) CancelFulfillment(
	ctx context.Context,
	bookingNumber, reason, actor string,
) (*model.SessionView, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if err := ws.fulfillment.Cancel(ctx, session, reason, actor); err != nil {
		return nil, err
	}
	return session.view(), nil
}

// GetRevenue sums the session booking's line items.
func (ws *workflowService) GetRevenue(ctx context.Context, bookingNumber string) (*revenue.Totals, *serviceerror.ServiceError) {
	session, err := ws.session(bookingNumber)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	totals := revenue.Aggregate(session.booking.LineItems)
	session.mu.Unlock()
	return &totals, nil
}

// GetAuditTrail returns the recorded lifecycle transitions of a booking.
func (ws *workflowService) GetAuditTrail(ctx context.Context, bookingNumber string) (*model.LifecycleAuditListResponse, *serviceerror.ServiceError) {
	if bookingNumber == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "booking number is required")
	}
	audits, err := ws.audits.ListByBookingNumber(ctx, bookingNumber)
	if err != nil {
		workflowLogger(bookingNumber).Error("Failed to read lifecycle audit", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError,
			fmt.Sprintf("failed to read lifecycle audit: %v", err))
	}
	return &model.LifecycleAuditListResponse{Data: audits}, nil
}

func (ws *workflowService) session(bookingNumber string) (*Session, *serviceerror.ServiceError) {
	if bookingNumber == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.MissingPrerequisiteError, "booking number is required")
	}
	session, ok := ws.sessions.Get(bookingNumber)
	if !ok {
		return nil, serviceerror.CustomServiceError(sessionNotFoundError,
			fmt.Sprintf("no workflow session is open for booking %s", bookingNumber))
	}
	return session, nil
}

func workflowLogger(bookingNumber string) *log.Logger {
	return log.GetLogger().With(
		log.String(log.LoggerKeyComponentName, "WorkflowService"),
		log.String("booking_number", bookingNumber),
	)
}

// actorOrSystem returns actor, or the system actor when the caller is anonymous.
func actorOrSystem(actor string) string {
	if actor == "" {
		return constants.SystemActor
	}
	return actor
}
