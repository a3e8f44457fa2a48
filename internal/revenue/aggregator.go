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

// Package revenue sums payer rates and revenue shares of booking line items.
package revenue

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
)

// Totals holds the booking-level sums of its line items.
type Totals struct {
	TotalSHA      decimal.Decimal `json:"totalSha"`
	TotalVendor   decimal.Decimal `json:"totalVendor"`
	TotalFacility decimal.Decimal `json:"totalFacility"`
}

// Add returns the elementwise sum of t and other.
func (t Totals) Add(other Totals) Totals {
	return Totals{
		TotalSHA:      t.TotalSHA.Add(other.TotalSHA),
		TotalVendor:   t.TotalVendor.Add(other.TotalVendor),
		TotalFacility: t.TotalFacility.Add(other.TotalFacility),
	}
}

// Aggregate sums the canonical line items. Absent or malformed amounts count as zero.
func Aggregate(items []model.ServiceLineItem) Totals {
	totals := Totals{
		TotalSHA:      decimal.Zero,
		TotalVendor:   decimal.Zero,
		TotalFacility: decimal.Zero,
	}
	for _, item := range items {
		totals.TotalSHA = totals.TotalSHA.Add(parseAmount(item.SHARate))
		totals.TotalVendor = totals.TotalVendor.Add(parseAmount(item.VendorShare))
		totals.TotalFacility = totals.TotalFacility.Add(parseAmount(item.FacilityShare))
	}
	return totals
}

// parseAmount never fails: anything that is not a decimal is zero.
func parseAmount(value string) decimal.Decimal {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
