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

package model

import (
	"github.com/wso2/booking-workflow-api/internal/backend"
	bookingmodel "github.com/wso2/booking-workflow-api/internal/booking/model"
)

// Decision is the administrative action applied to a batch.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Past returns the past-tense verb used in summaries.
func (d Decision) Past() string {
	if d == DecisionReject {
		return "rejected"
	}
	return "approved"
}

// SelectionRequest replaces the board selection.
type SelectionRequest struct {
	BookingIDs []string `json:"bookingIds"`
}

// BulkRequest names the bookings to act on. An empty list acts on the current selection.
type BulkRequest struct {
	BookingIDs []string `json:"bookingIds"`
}

// ItemResult is the outcome for one booking of a batch.
type ItemResult struct {
	BookingID     string `json:"bookingId"`
	BookingNumber string `json:"bookingNumber,omitempty"`
	Success       bool   `json:"success"`
	Code          string `json:"code,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Summary reports a completed batch.
type Summary struct {
	Decision     Decision     `json:"decision"`
	Attempted    int          `json:"attempted"`
	Succeeded    int          `json:"succeeded"`
	Failed       int          `json:"failed"`
	Results      []ItemResult `json:"results"`
	Message      string       `json:"message"`
	Refreshed    bool         `json:"refreshed"`
	RefreshError string       `json:"refreshError,omitempty"`
}

// SelectionResponse is the selection after an update, with the ids that could not be selected.
type SelectionResponse struct {
	Selected []string     `json:"selected"`
	Rejected []ItemResult `json:"rejected,omitempty"`
}

// BoardView is the loaded snapshot as seen by the operator.
type BoardView struct {
	Filter   backend.Filter         `json:"filter"`
	Bookings []bookingmodel.Booking `json:"bookings"`
	Selected []string               `json:"selected"`
}
