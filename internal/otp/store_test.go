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
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/database/provider"
	"github.com/wso2/booking-workflow-api/internal/system/stores"
)

// mockRedis overrides the commands the redis store uses.
type mockRedis struct {
	redis.Cmdable
	mock.Mock
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(key, value, expiration)
	return redis.NewStatusResult("OK", args.Error(0))
}

func (m *mockRedis) GetDel(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(keys)
	return redis.NewIntResult(1, args.Error(0))
}

func TestRedisStore_SaveUsesPurposeScopedKeyAndTTL(t *testing.T) {
	client := new(mockRedis)
	client.On("Set", "otp:B-100:consent", mock.Anything, 5*time.Minute).Return(nil)

	store := newRedisStore(client, "otp", 5*time.Minute)
	err := store.Save(context.Background(), &model.Challenge{BookingNumber: "B-100", Purpose: model.PurposeConsent, CodeHash: "h"})

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestRedisStore_ConsumeUsesGetDel(t *testing.T) {
	payload, _ := json.Marshal(model.Challenge{BookingNumber: "B-100", Purpose: model.PurposeOverride, CodeHash: "hash", IssuedAt: 42})
	client := new(mockRedis)
	client.On("GetDel", "otp:B-100:override").Return(string(payload), nil)

	store := newRedisStore(client, "", 0)
	challenge, err := store.Consume(context.Background(), "B-100", model.PurposeOverride)

	require.NoError(t, err)
	require.NotNil(t, challenge)
	assert.Equal(t, "hash", challenge.CodeHash)
	assert.Equal(t, int64(42), challenge.IssuedAt)
}

func TestRedisStore_ConsumeMissingKey(t *testing.T) {
	client := new(mockRedis)
	client.On("GetDel", "otp:B-100:consent").Return("", redis.Nil)

	challenge, err := newRedisStore(client, "otp", 0).Consume(context.Background(), "B-100", model.PurposeConsent)
	assert.NoError(t, err)
	assert.Nil(t, challenge)
}

func TestRedisStore_Grant(t *testing.T) {
	client := new(mockRedis)
	client.On("Set", "otp-grant:B-100", mock.Anything, time.Duration(0)).Return(nil)
	client.On("Get", "otp-grant:B-200").Return("", redis.Nil)

	store := newRedisStore(client, "otp", time.Minute)
	assert.NoError(t, store.SaveGrant(context.Background(), &model.Grant{BookingNumber: "B-100", Purpose: model.PurposeConsent}))

	grant, err := store.GetGrant(context.Background(), "B-200")
	assert.NoError(t, err)
	assert.Nil(t, grant)
	client.AssertExpectations(t)
}

func newSQLMockStore(t *testing.T) (challengeStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	registry := stores.NewStoreRegistry(provider.NewDBClient(sqlx.NewDb(db, "sqlmock"), "mysql"))
	return newDBStore(registry), mock
}

func TestDBStore_SaveUpserts(t *testing.T) {
	store, mock := newSQLMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO BOOKING_OTP_CHALLENGE").
		WithArgs("B-100", "consent", "hash", int64(10), int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.Save(context.Background(), &model.Challenge{
		BookingNumber: "B-100", Purpose: model.PurposeConsent, CodeHash: "hash", IssuedAt: 10,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_ConsumeLocksAndDeletes(t *testing.T) {
	store, mock := newSQLMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT CODE_HASH, ISSUED_TIME, EXPIRY_TIME FROM BOOKING_OTP_CHALLENGE").
		WithArgs("B-100", "fulfillment").
		WillReturnRows(sqlmock.NewRows([]string{"CODE_HASH", "ISSUED_TIME", "EXPIRY_TIME"}).AddRow("hash", int64(10), int64(0)))
	mock.ExpectExec("DELETE FROM BOOKING_OTP_CHALLENGE").
		WithArgs("B-100", "fulfillment").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	challenge, err := store.Consume(context.Background(), "B-100", model.PurposeFulfillment)
	require.NoError(t, err)
	require.NotNil(t, challenge)
	assert.Equal(t, "hash", challenge.CodeHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_ConsumeWithoutChallenge(t *testing.T) {
	store, mock := newSQLMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT CODE_HASH").
		WithArgs("B-100", "consent").
		WillReturnRows(sqlmock.NewRows([]string{"CODE_HASH", "ISSUED_TIME", "EXPIRY_TIME"}))
	mock.ExpectCommit()

	challenge, err := store.Consume(context.Background(), "B-100", model.PurposeConsent)
	assert.NoError(t, err)
	assert.Nil(t, challenge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_GetGrant(t *testing.T) {
	store, mock := newSQLMockStore(t)
	mock.ExpectQuery("SELECT BOOKING_NUMBER, PURPOSE, GRANTED_TIME FROM BOOKING_OTP_GRANT").
		WithArgs("B-100").
		WillReturnRows(sqlmock.NewRows([]string{"BOOKING_NUMBER", "PURPOSE", "GRANTED_TIME"}).AddRow("B-100", "override", int64(99)))

	grant, err := store.GetGrant(context.Background(), "B-100")
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, model.PurposeOverride, grant.Purpose)
	assert.Equal(t, int64(99), grant.GrantedAt)
}
