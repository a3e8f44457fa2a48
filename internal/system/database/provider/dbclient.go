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

package provider

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	dbmodel "github.com/wso2/booking-workflow-api/internal/system/database/model"
	"github.com/wso2/booking-workflow-api/internal/system/log"
)

// DBClientInterface defines the operations stores run against a datasource.
type DBClientInterface interface {
	Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query dbmodel.DBQuery, args ...interface{}) (int64, error)
	BeginTx() (dbmodel.TxInterface, error)
}

// DBClient executes DBQuery objects against a sqlx connection pool.
type DBClient struct {
	db     *sqlx.DB
	dbType string
}

// NewDBClient creates a new DBClient.
func NewDBClient(db *sqlx.DB, dbType string) DBClientInterface {
	return &DBClient{
		db:     db,
		dbType: dbType,
	}
}

// Query runs a select and returns every row as a column-name keyed map.
// Byte slices returned by the driver are converted to strings.
func (c *DBClient) Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBClient"))
	logger.Debug("Executing query", log.String("query_id", query.ID))

	rows, err := c.db.Queryx(query.Query, args...)
	if err != nil {
		logger.Error("Query failed", log.String("query_id", query.ID), log.Error(err))
		return nil, fmt.Errorf("failed to execute query %s: %w", query.ID, err)
	}
	defer rows.Close()

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row for query %s: %w", query.ID, err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows for query %s: %w", query.ID, err)
	}

	return results, nil
}

// Execute runs a statement outside a transaction and returns the affected row count.
func (c *DBClient) Execute(query dbmodel.DBQuery, args ...interface{}) (int64, error) {
	res, err := c.db.Exec(query.Query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute %s: %w", query.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for %s: %w", query.ID, err)
	}
	return affected, nil
}

// BeginTx starts a new transaction.
func (c *DBClient) BeginTx() (dbmodel.TxInterface, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return dbmodel.NewTx(tx), nil
}
