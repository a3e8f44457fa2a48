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

// Package bulk applies approve and reject decisions to batches of bookings.
package bulk

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wso2/booking-workflow-api/internal/backend"
	bookingmodel "github.com/wso2/booking-workflow-api/internal/booking/model"
	"github.com/wso2/booking-workflow-api/internal/bulk/model"
	"github.com/wso2/booking-workflow-api/internal/revenue"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/error/codes"
	"github.com/wso2/booking-workflow-api/internal/system/error/serviceerror"
	"github.com/wso2/booking-workflow-api/internal/system/log"
)

var emptySelectionError = serviceerror.ServiceError{
	Type:             serviceerror.ClientErrorType,
	Code:             codes.BulkEmptySelection,
	Error:            "empty_selection",
	ErrorDescription: "No bookings were given and none are selected",
}

// BookingBackend is the part of the booking backend the coordinator uses.
type BookingBackend interface {
	ListBookings(ctx context.Context, filter backend.Filter) ([]bookingmodel.Booking, error)
	ApproveBooking(ctx context.Context, bookingNumber string) error
	RejectBooking(ctx context.Context, bookingNumber string) error
}

// CoordinatorInterface is the bulk review service.
type CoordinatorInterface interface {
	Refresh(ctx context.Context, filter backend.Filter) (*model.BoardView, *serviceerror.ServiceError)
	Select(ctx context.Context, ids []string) (*model.SelectionResponse, *serviceerror.ServiceError)
	BulkApprove(ctx context.Context, ids []string) (*model.Summary, *serviceerror.ServiceError)
	BulkReject(ctx context.Context, ids []string) (*model.Summary, *serviceerror.ServiceError)
	Revenue(ctx context.Context) *revenue.Report
}

type coordinator struct {
	backend BookingBackend
	board   *Board
	limiter *rate.Limiter
}

func newCoordinator(client BookingBackend, board *Board, cfg config.BulkConfig) *coordinator {
	c := &coordinator{backend: client, board: board}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return c
}

// Refresh applies filter and reloads the snapshot from the backend.
func (c *coordinator) Refresh(ctx context.Context, filter backend.Filter) (*model.BoardView, *serviceerror.ServiceError) {
	if changed := c.board.SetFilter(filter); changed {
		bulkLogger().Debug("Board filter changed, selection cleared")
	}
	if err := c.reload(ctx); err != nil {
		return nil, backend.ToServiceError(err, "list bookings")
	}
	return c.board.View(), nil
}

// Select replaces the selection. Only pending bookings are accepted.
func (c *coordinator) Select(ctx context.Context, ids []string) (*model.SelectionResponse, *serviceerror.ServiceError) {
	response := c.board.Select(ids)
	return &response, nil
}

// BulkApprove approves each booking in turn.
func (c *coordinator) BulkApprove(ctx context.Context, ids []string) (*model.Summary, *serviceerror.ServiceError) {
	return c.run(ctx, model.DecisionApprove, ids)
}

// BulkReject rejects each booking in turn.
func (c *coordinator) BulkReject(ctx context.Context, ids []string) (*model.Summary, *serviceerror.ServiceError) {
	return c.run(ctx, model.DecisionReject, ids)
}

// Revenue reports revenue over the loaded snapshot.
func (c *coordinator) Revenue(ctx context.Context) *revenue.Report {
	report := revenue.Summarize(c.board.Bookings())
	return &report
}

// run processes ids sequentially. A failing item is recorded and the batch moves on; once
// started the batch runs to the end even if the caller goes away. The snapshot is reloaded last.
func (c *coordinator) run(ctx context.Context, decision model.Decision, ids []string) (*model.Summary, *serviceerror.ServiceError) {
	if len(ids) == 0 {
		ids = c.board.Selection()
	}
	if len(ids) == 0 {
		err := emptySelectionError
		return nil, &err
	}

	ctx = context.WithoutCancel(ctx)
	logger := bulkLogger().With(log.String("decision", string(decision)))
	logger.Info("Bulk operation started", log.Int("count", len(ids)))

	summary := &model.Summary{
		Decision: decision,
		Results:  make([]model.ItemResult, 0, len(ids)),
	}
	decided := make(map[string]bool, len(ids))
	for _, id := range ids {
		var result model.ItemResult
		if decided[id] {
			result = model.ItemResult{
				BookingID: id,
				Code:      codes.BookingNotPending,
				Error:     "booking was already decided earlier in this batch",
			}
			if booking, ok := c.board.Lookup(id); ok {
				result.BookingNumber = booking.BookingNumber
			}
		} else {
			result = c.apply(ctx, decision, id)
			decided[id] = true
		}
		summary.Attempted++
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
			logger.Warn("Bulk item failed",
				log.String("booking_id", id),
				log.String("booking_number", result.BookingNumber),
				log.String("error", result.Error))
		}
		summary.Results = append(summary.Results, result)
	}

	summary.Message = fmt.Sprintf("Processed %d booking(s): %d %s, %d failed",
		summary.Attempted, summary.Succeeded, decision.Past(), summary.Failed)
	logger.Info(summary.Message)

	c.board.ClearSelection()
	if err := c.reload(ctx); err != nil {
		logger.Error("Failed to refresh bookings after bulk operation", log.Error(err))
		summary.RefreshError = err.Error()
	} else {
		summary.Refreshed = true
	}
	return summary, nil
}

func (c *coordinator) apply(ctx context.Context, decision model.Decision, id string) model.ItemResult {
	result := model.ItemResult{BookingID: id}

	booking, ok := c.board.Lookup(id)
	if !ok {
		result.Code = codes.BookingNotFound
		result.Error = "booking is not in the loaded set"
		return result
	}
	result.BookingNumber = booking.BookingNumber
	if !booking.ApprovalStatus.CanTransitionTo(targetStatus(decision)) {
		result.Code = codes.BookingNotPending
		result.Error = fmt.Sprintf("booking is %s, only pending bookings can be %s",
			booking.ApprovalStatus, decision.Past())
		return result
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			bulkLogger().Warn("Bulk pacing skipped", log.Error(err))
		}
	}

	var err error
	if decision == model.DecisionReject {
		err = c.backend.RejectBooking(ctx, booking.BookingNumber)
	} else {
		err = c.backend.ApproveBooking(ctx, booking.BookingNumber)
	}
	if err != nil {
		result.Code = backend.ToServiceError(err, string(decision)+" booking").Code
		result.Error = err.Error()
		return result
	}

	result.Success = true
	return result
}

func (c *coordinator) reload(ctx context.Context) error {
	bookings, err := c.backend.ListBookings(ctx, c.board.Filter())
	if err != nil {
		return err
	}
	c.board.Replace(bookings)
	return nil
}

func targetStatus(decision model.Decision) bookingmodel.ApprovalStatus {
	if decision == model.DecisionReject {
		return bookingmodel.ApprovalRejected
	}
	return bookingmodel.ApprovalApproved
}

func bulkLogger() *log.Logger {
	return log.GetLogger().With(log.String(log.LoggerKeyComponentName, "BulkCoordinator"))
}

