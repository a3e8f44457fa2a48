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

// Package stores holds the shared store registry and transaction runner.
package stores

import (
	dbmodel "github.com/wso2/booking-workflow-api/internal/system/database/model"
	"github.com/wso2/booking-workflow-api/internal/system/database/provider"
	"github.com/wso2/booking-workflow-api/internal/system/log"
)

// StoreRegistry gives the database-backed stores a shared client and transaction runner.
type StoreRegistry struct {
	dbClient provider.DBClientInterface
}

// NewStoreRegistry creates a new store registry.
func NewStoreRegistry(dbClient provider.DBClientInterface) *StoreRegistry {
	return &StoreRegistry{dbClient: dbClient}
}

// DBClient returns the client the registry runs transactions on.
func (r *StoreRegistry) DBClient() provider.DBClientInterface {
	return r.dbClient
}

// ExecuteTransaction executes multiple store operations in a single transaction.
// Any failure rolls back every preceding operation.
func (r *StoreRegistry) ExecuteTransaction(queries []func(tx dbmodel.TxInterface) error) error {
	logger := log.GetLogger()
	logger.Debug("Starting transaction", log.Int("query_count", len(queries)))

	tx, err := r.dbClient.BeginTx()
	if err != nil {
		logger.Error("Failed to begin transaction", log.Error(err))
		return err
	}

	for i, query := range queries {
		if err := query(tx); err != nil {
			logger.Warn("Transaction query failed, rolling back",
				log.Error(err),
				log.Int("failed_query_index", i),
			)
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Rollback failed", log.Error(rbErr))
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", log.Error(err))
		return err
	}

	logger.Debug("Transaction committed successfully", log.Int("query_count", len(queries)))
	return nil
}
