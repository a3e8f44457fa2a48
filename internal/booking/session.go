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
	"sync"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/system/log"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// Session is the working context of one booking's workflow. Callers hold mu for the
// duration of an operation so a booking has a single logical thread of control.
type Session struct {
	mu sync.Mutex

	booking          model.Booking
	lifecycle        *Lifecycle
	consentVerified  bool
	overrideVerified bool

	// authorization and fulfillment attempts are kept across failed verifications
	// and dropped on success or cancel.
	authorization *model.ConsentAttempt
	fulfillment   *model.ConsentAttempt
	failure       *model.FulfillmentFailure

	audits AuditStore
}

func newSession(booking model.Booking, audits AuditStore) *Session {
	return &Session{
		booking:   booking,
		lifecycle: NewLifecycle(),
		audits:    audits,
	}
}

// BookingNumber returns the external key of the session's booking.
func (s *Session) BookingNumber() string {
	return s.booking.BookingNumber
}

// State returns the current lifecycle state.
func (s *Session) State() model.LifecycleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.State()
}

// View returns a snapshot of the session.
func (s *Session) View() *model.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() *model.SessionView {
	v := &model.SessionView{
		Booking:          s.booking,
		State:            s.lifecycle.State(),
		ConsentVerified:  s.consentVerified,
		OverrideVerified: s.overrideVerified,
		History:          s.lifecycle.History(),
	}
	if s.authorization != nil {
		attempt := *s.authorization
		v.Attempt = &attempt
	} else if s.fulfillment != nil {
		attempt := *s.fulfillment
		v.Attempt = &attempt
	}
	if s.failure != nil {
		failure := *s.failure
		v.FulfillmentFailure = &failure
	}
	return v
}

// record writes an audit entry for t. An audit failure does not undo the transition.
func (s *Session) record(ctx context.Context, t model.Transition, actor, reason string) {
	s.writeAudit(ctx, &t.From, t.To, actor, reason)
}

func (s *Session) writeAudit(ctx context.Context, previous *model.LifecycleState, current model.LifecycleState,
	actor, reason string) {
	audit := &model.LifecycleAudit{
		AuditID:       utils.GenerateUUID(),
		BookingNumber: s.booking.BookingNumber,
		CurrentState:  current.String(),
		ActionTime:    utils.GetCurrentTimeMillis(),
	}
	if previous != nil {
		prev := previous.String()
		audit.PreviousState = &prev
	}
	if reason != "" {
		audit.Reason = &reason
	}
	if actor != "" {
		audit.ActionBy = &actor
	}

	if err := s.audits.Create(ctx, audit); err != nil {
		log.GetLogger().Error("Failed to record lifecycle audit",
			log.String(log.LoggerKeyComponentName, "BookingLifecycle"),
			log.String("booking_number", s.booking.BookingNumber),
			log.String("state", current.String()),
			log.Error(err))
	}
}

// syncApproval records a changed backend approval status. Caller holds s.mu.
func (s *Session) syncApproval(status model.ApprovalStatus) {
	if !status.IsValid() || status == s.booking.ApprovalStatus {
		return
	}
	workflowLogger(s.booking.BookingNumber).Info("Booking approval status changed",
		log.String("previous", s.booking.ApprovalStatus.String()),
		log.String("current", status.String()))
	s.booking.ApprovalStatus = status
}

// SessionManager holds the active sessions keyed by booking number.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	audits   AuditStore
}

// NewSessionManager creates an empty session registry.
func NewSessionManager(audits AuditStore) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		audits:   audits,
	}
}

// Open returns the session for booking, creating it if needed. A new session leaves Created
// at once: rejected bookings become Rejected, all others await authorization. An existing
// session takes over the approval status the backend now reports.
func (m *SessionManager) Open(ctx context.Context, booking model.Booking, actor string) (*Session, bool, error) {
	m.mu.Lock()
	if existing, ok := m.sessions[booking.BookingNumber]; ok {
		m.mu.Unlock()
		existing.mu.Lock()
		existing.syncApproval(booking.ApprovalStatus)
		existing.mu.Unlock()
		return existing, false, nil
	}
	session := newSession(booking, m.audits)
	session.mu.Lock()
	m.sessions[booking.BookingNumber] = session
	m.mu.Unlock()
	defer session.mu.Unlock()

	session.writeAudit(ctx, nil, model.StateCreated, actor, "")

	var (
		t   model.Transition
		err error
	)
	if booking.ApprovalStatus == model.ApprovalRejected {
		t, err = session.lifecycle.Reject()
	} else {
		t, err = session.lifecycle.Start()
	}
	if err != nil {
		return nil, false, err
	}
	session.record(ctx, t, actor, "")
	return session, true, nil
}

// Get returns the session for a booking number.
func (m *SessionManager) Get(bookingNumber string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[bookingNumber]
	return s, ok
}
