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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wso2/booking-workflow-api/internal/backend"
	bookingmodel "github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
)

func TestBoard_OnlyPendingIsSelectable(t *testing.T) {
	board := NewBoard()
	rejected := pending("3", "B-3")
	rejected.ApprovalStatus = bookingmodel.ApprovalRejected
	board.Replace([]bookingmodel.Booking{pending("1", "B-1"), pending("2", "B-2"), rejected})

	resp := board.Select([]string{"1", "3", "4", "1"})
	assert.Equal(t, []string{"1"}, resp.Selected)
	assert.Len(t, resp.Rejected, 2)
	assert.Equal(t, codes.BookingNotPending, resp.Rejected[0].Code)
	assert.Equal(t, codes.BookingNotFound, resp.Rejected[1].Code)
	assert.Equal(t, []string{"1"}, board.Selection())
}

func TestBoard_UnsetApprovalIsNotSelectable(t *testing.T) {
	board := NewBoard()
	unset := bookingmodel.Normalize(bookingmodel.RawBooking{ID: "5", BookingNumber: "B-5"})
	board.Replace([]bookingmodel.Booking{unset})

	resp := board.Select([]string{"5"})
	assert.Empty(t, resp.Selected)
	assert.Len(t, resp.Rejected, 1)
	assert.Equal(t, codes.BookingNotPending, resp.Rejected[0].Code)
	assert.Empty(t, board.Selection())
}

func TestBoard_FilterChangeClearsSelection(t *testing.T) {
	board := NewBoard()
	board.Replace([]bookingmodel.Booking{pending("1", "B-1")})
	board.Select([]string{"1"})

	assert.False(t, board.SetFilter(backend.Filter{}))
	assert.Equal(t, []string{"1"}, board.Selection())

	assert.True(t, board.SetFilter(backend.Filter{ApprovalStatus: "pending"}))
	assert.Empty(t, board.Selection())
}

func TestBoard_ReplaceDropsNoLongerSelectable(t *testing.T) {
	board := NewBoard()
	board.Replace([]bookingmodel.Booking{pending("1", "B-1"), pending("2", "B-2")})
	board.Select([]string{"1", "2"})

	approved := pending("1", "B-1")
	approved.ApprovalStatus = bookingmodel.ApprovalApproved
	board.Replace([]bookingmodel.Booking{approved, pending("2", "B-2")})

	assert.Equal(t, []string{"2"}, board.Selection())
	view := board.View()
	assert.Len(t, view.Bookings, 2)
	assert.Equal(t, []string{"2"}, view.Selected)
}
