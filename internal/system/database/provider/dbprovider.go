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

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"fmt"
	"sync"

	"github.com/wso2/booking-workflow-api/internal/system/database"
	"github.com/wso2/booking-workflow-api/internal/system/log"
)

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetBookingDBClient() (DBClientInterface, error)
}

// DBProviderCloser is a separate interface for closing the provider.
// Only the lifecycle manager should use this interface.
type DBProviderCloser interface {
	Close() error
}

type dbProvider struct {
	bookingClient DBClientInterface
	mutex         sync.RWMutex
	db            *database.DB
}

var (
	instance *dbProvider
	once     sync.Once
)

// InitDBProvider initializes the singleton instance of DBProvider with the database connection.
func InitDBProvider(db *database.DB) {
	once.Do(func() {
		instance = &dbProvider{db: db}
		if db != nil {
			instance.bookingClient = NewDBClient(db.DB, "mysql")
			log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider")).
				Debug("Booking DB client initialized")
		}
	})
}

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetDBProviderCloser returns the DBProvider with closing capability.
func GetDBProviderCloser() DBProviderCloser {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetBookingDBClient returns the client for the booking datasource.
func (d *dbProvider) GetBookingDBClient() (DBClientInterface, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if d.bookingClient == nil {
		return nil, fmt.Errorf("booking datasource is not configured")
	}
	return d.bookingClient, nil
}

// Close releases the client and closes the underlying connection pool.
func (d *dbProvider) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.bookingClient = nil
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
