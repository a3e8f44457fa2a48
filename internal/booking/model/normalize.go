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

import "strings"

// Normalize converts a backend booking into the canonical shape.
func Normalize(raw RawBooking) Booking {
	id := raw.ID
	if id == "" {
		id = raw.LegacyID
	}

	items := raw.LineItems
	if len(items) == 0 {
		items = raw.Services
	}

	// An absent or unknown status stays unset so the booking is never selectable for review.
	approval := ApprovalStatus(strings.ToLower(strings.TrimSpace(raw.ApprovalStatus)))
	if !approval.IsValid() {
		approval = ""
	}

	return Booking{
		ID:             id,
		BookingNumber:  raw.BookingNumber,
		ApprovalStatus: approval,
		BookingStatus:  raw.BookingStatus,
		OTPOverridden:  raw.OTPOverridden,
		LineItems:      NormalizeLineItems(items),
		CreatedAt:      raw.CreatedAt,
		PatientRef:     raw.PatientRef,
		FacilityRef:    raw.FacilityRef,
		PaymentModeRef: raw.PaymentModeRef,
	}
}

// NormalizeAll converts a list of backend bookings.
func NormalizeAll(raws []RawBooking) []Booking {
	out := make([]Booking, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

// NormalizeLineItems converts backend line items into the canonical shape.
func NormalizeLineItems(raws []RawLineItem) []ServiceLineItem {
	out := make([]ServiceLineItem, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeLineItem(raw))
	}
	return out
}

// NormalizeLineItem resolves the field variants of one line item:
// shaRate falls back to tariff, shares fall back to the nested revenue block,
// the item is completed when either status field says so, and scheduledDate
// falls back to bookingDate.
func NormalizeLineItem(raw RawLineItem) ServiceLineItem {
	item := ServiceLineItem{
		ServiceCode:   raw.ServiceCode,
		ServiceName:   raw.ServiceName,
		SHARate:       firstNonEmpty(string(raw.SHARate), string(raw.Tariff)),
		VendorShare:   string(raw.VendorShare),
		FacilityShare: string(raw.FacilityShare),
		ServiceStatus: LineItemPending,
		ScheduledDate: firstNonEmpty(raw.ScheduledDate, raw.BookingDate),
	}

	if raw.Revenue != nil {
		item.VendorShare = firstNonEmpty(item.VendorShare, string(raw.Revenue.VendorShare))
		item.FacilityShare = firstNonEmpty(item.FacilityShare, string(raw.Revenue.FacilityShare))
	}

	if isCompleted(raw.ServiceStatus) || isCompleted(raw.Status) {
		item.ServiceStatus = LineItemCompleted
	}

	return item
}

func isCompleted(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), string(LineItemCompleted))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
