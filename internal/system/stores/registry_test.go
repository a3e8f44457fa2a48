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

package stores

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodel "github.com/wso2/booking-workflow-api/internal/system/database/model"
	"github.com/wso2/booking-workflow-api/internal/system/database/provider"
)

func newMockRegistry(t *testing.T) (*StoreRegistry, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewStoreRegistry(provider.NewDBClient(sqlx.NewDb(db, "sqlmock"), "mysql")), mock
}

func TestExecuteTransaction_CommitsAll(t *testing.T) {
	registry, mock := newMockRegistry(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO A").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO B").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := registry.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			_, err := tx.Exec("INSERT INTO A VALUES (1)")
			return err
		},
		func(tx dbmodel.TxInterface) error {
			_, err := tx.Exec("INSERT INTO B VALUES (1)")
			return err
		},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTransaction_RollsBackOnFailure(t *testing.T) {
	registry, mock := newMockRegistry(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO A").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	failure := errors.New("constraint violated")
	err := registry.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			_, err := tx.Exec("INSERT INTO A VALUES (1)")
			return err
		},
		func(tx dbmodel.TxInterface) error { return failure },
		func(tx dbmodel.TxInterface) error {
			t.Fatal("operation after a failure must not run")
			return nil
		},
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}
