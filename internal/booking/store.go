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
	dbmodel "github.com/wso2/booking-workflow-api/internal/system/database/model"
	"github.com/wso2/booking-workflow-api/internal/system/stores"
)

// DBQuery objects for lifecycle audit operations
var (
	QueryInsertLifecycleAudit = dbmodel.DBQuery{
		ID: "INSERT_LIFECYCLE_AUDIT",
		Query: "INSERT INTO BOOKING_LIFECYCLE_AUDIT (AUDIT_ID, BOOKING_NUMBER, PREVIOUS_STATE, CURRENT_STATE, " +
			"REASON, ACTION_BY, ACTION_TIME) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetLifecycleAudits = dbmodel.DBQuery{
		ID: "GET_LIFECYCLE_AUDITS",
		Query: "SELECT AUDIT_ID, BOOKING_NUMBER, PREVIOUS_STATE, CURRENT_STATE, REASON, ACTION_BY, ACTION_TIME " +
			"FROM BOOKING_LIFECYCLE_AUDIT WHERE BOOKING_NUMBER = ? ORDER BY ACTION_TIME ASC",
	}
)

// AuditStore persists lifecycle audit records.
type AuditStore interface {
	Create(ctx context.Context, audit *model.LifecycleAudit) error
	ListByBookingNumber(ctx context.Context, bookingNumber string) ([]model.LifecycleAudit, error)
}

type dbAuditStore struct {
	registry *stores.StoreRegistry
}

func newDBAuditStore(registry *stores.StoreRegistry) AuditStore {
	return &dbAuditStore{registry: registry}
}

func (s *dbAuditStore) Create(ctx context.Context, audit *model.LifecycleAudit) error {
	return s.registry.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			_, err := tx.Exec(QueryInsertLifecycleAudit.Query,
				audit.AuditID,
				audit.BookingNumber,
				audit.PreviousState,
				audit.CurrentState,
				audit.Reason,
				audit.ActionBy,
				audit.ActionTime,
			)
			return err
		},
	})
}

func (s *dbAuditStore) ListByBookingNumber(ctx context.Context, bookingNumber string) ([]model.LifecycleAudit, error) {
	results, err := s.registry.DBClient().Query(QueryGetLifecycleAudits, bookingNumber)
	if err != nil {
		return nil, err
	}

	audits := make([]model.LifecycleAudit, 0, len(results))
	for _, row := range results {
		audits = append(audits, mapToLifecycleAudit(row))
	}
	return audits, nil
}

func mapToLifecycleAudit(row map[string]interface{}) model.LifecycleAudit {
	audit := model.LifecycleAudit{}

	if v, ok := row["AUDIT_ID"].(string); ok {
		audit.AuditID = v
	}
	if v, ok := row["BOOKING_NUMBER"].(string); ok {
		audit.BookingNumber = v
	}
	if v, ok := row["PREVIOUS_STATE"].(string); ok {
		audit.PreviousState = &v
	}
	if v, ok := row["CURRENT_STATE"].(string); ok {
		audit.CurrentState = v
	}
	if v, ok := row["REASON"].(string); ok {
		audit.Reason = &v
	}
	if v, ok := row["ACTION_BY"].(string); ok {
		audit.ActionBy = &v
	}
	if v, ok := row["ACTION_TIME"].(int64); ok {
		audit.ActionTime = v
	}

	return audit
}

// memoryAuditStore keeps audit records in process when no database is configured.
type memoryAuditStore struct {
	mu     sync.RWMutex
	audits map[string][]model.LifecycleAudit
}

func newMemoryAuditStore() AuditStore {
	return &memoryAuditStore{audits: make(map[string][]model.LifecycleAudit)}
}

func (s *memoryAuditStore) Create(ctx context.Context, audit *model.LifecycleAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits[audit.BookingNumber] = append(s.audits[audit.BookingNumber], *audit)
	return nil
}

func (s *memoryAuditStore) ListByBookingNumber(ctx context.Context, bookingNumber string) ([]model.LifecycleAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LifecycleAudit, len(s.audits[bookingNumber]))
	copy(out, s.audits[bookingNumber])
	return out, nil
}

// discardAuditStore is used when auditing is disabled.
type discardAuditStore struct{}

func (discardAuditStore) Create(ctx context.Context, audit *model.LifecycleAudit) error {
	return nil
}

func (discardAuditStore) ListByBookingNumber(ctx context.Context, bookingNumber string) ([]model.LifecycleAudit, error) {
	return []model.LifecycleAudit{}, nil
}
