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

package bulk

import (
	"sync"

	"github.com/wso2/booking-workflow-api/internal/backend"
	bookingmodel "github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/bulk/model"
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
)

// Board is the in-memory snapshot of bookings an operator reviews, with its filter and selection.
// Readers see whatever the last refresh loaded; there is no versioning.
type Board struct {
	mu       sync.RWMutex
	filter   backend.Filter
	bookings []bookingmodel.Booking
	byID     map[string]bookingmodel.Booking
	selected []string
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{byID: make(map[string]bookingmodel.Booking)}
}

// Selectable reports whether a booking may be picked for a bulk decision.
func Selectable(b bookingmodel.Booking) bool {
	return b.ApprovalStatus == bookingmodel.ApprovalPending
}

// Filter returns the active filter.
func (b *Board) Filter() backend.Filter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// SetFilter changes the active filter. Changing it clears the selection.
func (b *Board) SetFilter(filter backend.Filter) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.filter == filter {
		return false
	}
	b.filter = filter
	b.selected = nil
	return true
}

// Replace swaps in a freshly loaded snapshot. Selected ids that are no longer selectable are dropped.
func (b *Board) Replace(bookings []bookingmodel.Booking) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bookings = bookings
	b.byID = make(map[string]bookingmodel.Booking, len(bookings))
	for _, bk := range bookings {
		b.byID[bk.ID] = bk
	}

	kept := b.selected[:0]
	for _, id := range b.selected {
		if bk, ok := b.byID[id]; ok && Selectable(bk) {
			kept = append(kept, id)
		}
	}
	b.selected = kept
}

// Lookup resolves a booking id against the snapshot.
func (b *Board) Lookup(id string) (bookingmodel.Booking, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bk, ok := b.byID[id]
	return bk, ok
}

// Select replaces the selection with the selectable ids among ids.
func (b *Board) Select(ids []string) model.SelectionResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	response := model.SelectionResponse{Selected: []string{}}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		bk, ok := b.byID[id]
		switch {
		case !ok:
			response.Rejected = append(response.Rejected, model.ItemResult{
				BookingID: id, Code: codes.BookingNotFound, Error: "booking is not in the loaded set",
			})
		case !Selectable(bk):
			response.Rejected = append(response.Rejected, model.ItemResult{
				BookingID: id, BookingNumber: bk.BookingNumber, Code: codes.BookingNotPending,
				Error: "only pending bookings can be selected",
			})
		default:
			response.Selected = append(response.Selected, id)
		}
	}

	b.selected = append([]string(nil), response.Selected...)
	return response
}

// Selection returns the selected ids in selection order.
func (b *Board) Selection() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string{}, b.selected...)
}

// ClearSelection drops the selection.
func (b *Board) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = nil
}

// View returns a copy of the snapshot.
func (b *Board) View() *model.BoardView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &model.BoardView{
		Filter:   b.filter,
		Bookings: append([]bookingmodel.Booking{}, b.bookings...),
		Selected: append([]string{}, b.selected...),
	}
}

// Bookings returns a copy of the loaded bookings.
func (b *Board) Bookings() []bookingmodel.Booking {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]bookingmodel.Booking{}, b.bookings...)
}
