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
	"context"
	"fmt"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
	dbmodel "github.com/wso2/booking-workflow-api/internal/system/database/model"
	"github.com/wso2/booking-workflow-api/internal/system/stores"
)

// DBQuery objects for all OTP challenge operations
var (
	QueryUpsertChallenge = dbmodel.DBQuery{
		ID: "UPSERT_OTP_CHALLENGE",
		Query: "INSERT INTO BOOKING_OTP_CHALLENGE (BOOKING_NUMBER, PURPOSE, CODE_HASH, ISSUED_TIME, EXPIRY_TIME) " +
			"VALUES (?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE CODE_HASH = VALUES(CODE_HASH), " +
			"ISSUED_TIME = VALUES(ISSUED_TIME), EXPIRY_TIME = VALUES(EXPIRY_TIME)",
	}

	QueryLockChallenge = dbmodel.DBQuery{
		ID:    "LOCK_OTP_CHALLENGE",
		Query: "SELECT CODE_HASH, ISSUED_TIME, EXPIRY_TIME FROM BOOKING_OTP_CHALLENGE WHERE BOOKING_NUMBER = ? AND PURPOSE = ? FOR UPDATE",
	}

	QueryDeleteChallenge = dbmodel.DBQuery{
		ID:    "DELETE_OTP_CHALLENGE",
		Query: "DELETE FROM BOOKING_OTP_CHALLENGE WHERE BOOKING_NUMBER = ? AND PURPOSE = ?",
	}

	QueryUpsertGrant = dbmodel.DBQuery{
		ID: "UPSERT_OTP_GRANT",
		Query: "INSERT INTO BOOKING_OTP_GRANT (BOOKING_NUMBER, PURPOSE, GRANTED_TIME) VALUES (?, ?, ?) " +
			"ON DUPLICATE KEY UPDATE PURPOSE = VALUES(PURPOSE), GRANTED_TIME = VALUES(GRANTED_TIME)",
	}

	QueryGetGrant = dbmodel.DBQuery{
		ID:    "GET_OTP_GRANT",
		Query: "SELECT BOOKING_NUMBER, PURPOSE, GRANTED_TIME FROM BOOKING_OTP_GRANT WHERE BOOKING_NUMBER = ?",
	}
)

// challengeStore keeps the latest challenge per (booking number, purpose) and the authorization grants.
type challengeStore interface {
	// Save replaces any outstanding challenge for the same booking number and purpose.
	Save(ctx context.Context, challenge *model.Challenge) error
	// Consume atomically removes and returns the outstanding challenge, or nil if there is none.
	Consume(ctx context.Context, bookingNumber string, purpose model.Purpose) (*model.Challenge, error)
	Delete(ctx context.Context, bookingNumber string, purpose model.Purpose) error
	SaveGrant(ctx context.Context, grant *model.Grant) error
	// GetGrant returns nil when the booking holds no grant.
	GetGrant(ctx context.Context, bookingNumber string) (*model.Grant, error)
}

// dbStore implements challengeStore on the booking MySQL datasource.
type dbStore struct {
	registry *stores.StoreRegistry
}

func newDBStore(registry *stores.StoreRegistry) challengeStore {
	return &dbStore{registry: registry}
}

func (s *dbStore) Save(ctx context.Context, challenge *model.Challenge) error {
	return s.registry.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			_, err := tx.Exec(QueryUpsertChallenge.Query,
				challenge.BookingNumber,
				string(challenge.Purpose),
				challenge.CodeHash,
				challenge.IssuedAt,
				challenge.ExpiresAt,
			)
			return err
		},
	})
}

func (s *dbStore) Consume(ctx context.Context, bookingNumber string, purpose model.Purpose) (*model.Challenge, error) {
	var challenge *model.Challenge
	err := s.registry.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			rows, err := tx.Query(QueryLockChallenge.Query, bookingNumber, string(purpose))
			if err != nil {
				return err
			}
			defer rows.Close()

			if !rows.Next() {
				return rows.Err()
			}
			c := &model.Challenge{BookingNumber: bookingNumber, Purpose: purpose}
			if err := rows.Scan(&c.CodeHash, &c.IssuedAt, &c.ExpiresAt); err != nil {
				return fmt.Errorf("failed to scan otp challenge: %w", err)
			}
			challenge = c
			return nil
		},
		func(tx dbmodel.TxInterface) error {
			if challenge == nil {
				return nil
			}
			_, err := tx.Exec(QueryDeleteChallenge.Query, bookingNumber, string(purpose))
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *dbStore) Delete(ctx context.Context, bookingNumber string, purpose model.Purpose) error {
	_, err := s.registry.DBClient().Execute(QueryDeleteChallenge, bookingNumber, string(purpose))
	return err
}

func (s *dbStore) SaveGrant(ctx context.Context, grant *model.Grant) error {
	return s.registry.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			_, err := tx.Exec(QueryUpsertGrant.Query, grant.BookingNumber, string(grant.Purpose), grant.GrantedAt)
			return err
		},
	})
}

func (s *dbStore) GetGrant(ctx context.Context, bookingNumber string) (*model.Grant, error) {
	results, err := s.registry.DBClient().Query(QueryGetGrant, bookingNumber)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return mapToGrant(results[0]), nil
}

func mapToGrant(row map[string]interface{}) *model.Grant {
	grant := &model.Grant{}

	if v, ok := row["BOOKING_NUMBER"].(string); ok {
		grant.BookingNumber = v
	}
	if v, ok := row["PURPOSE"].(string); ok {
		grant.Purpose = model.Purpose(v)
	}
	if v, ok := row["GRANTED_TIME"].(int64); ok {
		grant.GrantedAt = v
	}

	return grant
}
