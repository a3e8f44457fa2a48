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

package revenue

import (
	"github.com/shopspring/decimal"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
)

// BookingRevenue is the per-booking line of a revenue report.
type BookingRevenue struct {
	BookingNumber  string               `json:"bookingNumber"`
	ApprovalStatus model.ApprovalStatus `json:"approvalStatus"`
	Totals
	CompletedItems int `json:"completedItems"`
	PendingItems   int `json:"pendingItems"`
}

// Report sums revenue across a set of bookings.
type Report struct {
	Bookings       []BookingRevenue `json:"bookings"`
	Totals         Totals           `json:"totals"`
	CompletedItems int              `json:"completedItems"`
	PendingItems   int              `json:"pendingItems"`

	// VendorShareOfSHA is the vendor total as a fraction of the SHA total.
	VendorShareOfSHA decimal.Decimal `json:"vendorShareOfSha"`
}

// Summarize builds a revenue report over bookings, keeping their order.
func Summarize(bookings []model.Booking) Report {
	report := Report{
		Bookings: make([]BookingRevenue, 0, len(bookings)),
		Totals:   Aggregate(nil),
	}

	for _, b := range bookings {
		line := BookingRevenue{
			BookingNumber:  b.BookingNumber,
			ApprovalStatus: b.ApprovalStatus,
			Totals:         Aggregate(b.LineItems),
		}
		for _, item := range b.LineItems {
			if item.IsCompleted() {
				line.CompletedItems++
			} else {
				line.PendingItems++
			}
		}

		report.Bookings = append(report.Bookings, line)
		report.Totals = report.Totals.Add(line.Totals)
		report.CompletedItems += line.CompletedItems
		report.PendingItems += line.PendingItems
	}

	report.VendorShareOfSHA = report.Totals.vendorShareOfSHA()
	return report
}

// vendorShareOfSHA rounds to 4 places. Zero SHA gives zero.
func (t Totals) vendorShareOfSHA() decimal.Decimal {
	if t.TotalSHA.IsZero() {
		return decimal.Zero
	}
	return t.TotalVendor.DivRound(t.TotalSHA, 4)
}
