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

package otp

import (
	"context"
	"fmt"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
	"github.com/wso2/booking-workflow-api/internal/system/config"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// Deliverer hands an issued code to whoever must enter it.
type Deliverer interface {
	// Deliver reports whether the code may be returned to the requesting caller.
	Deliver(ctx context.Context, challenge *model.Challenge, code string) (bool, error)
	Mode() string
}

// MessagePublisher publishes a JSON payload to the delivery queue.
type MessagePublisher interface {
	PublishJSON(ctx context.Context, payload interface{}, headers map[string]interface{}) error
}

// echoDeliverer returns the code to the caller for relay to the authorizing party.
type echoDeliverer struct{}

func (echoDeliverer) Deliver(ctx context.Context, challenge *model.Challenge, code string) (bool, error) {
	return true, nil
}

func (echoDeliverer) Mode() string {
	return config.OTPDeliveryEcho
}

// queueDeliverer publishes the code for out-of-band delivery and never echoes it.
type queueDeliverer struct {
	publisher MessagePublisher
}

func (d *queueDeliverer) Deliver(ctx context.Context, challenge *model.Challenge, code string) (bool, error) {
	msg := model.DeliveryMessage{
		MessageID:     utils.GenerateUUID(),
		BookingNumber: challenge.BookingNumber,
		Purpose:       challenge.Purpose,
		Code:          code,
		IssuedAt:      challenge.IssuedAt,
		ExpiresAt:     challenge.ExpiresAt,
	}
	headers := map[string]interface{}{
		"message_type": "otp_delivery",
		"purpose":      string(challenge.Purpose),
	}
	if id := utils.CorrelationIDFromContext(ctx); id != "" {
		headers["correlation_id"] = id
	}
	if err := d.publisher.PublishJSON(ctx, msg, headers); err != nil {
		return false, fmt.Errorf("failed to queue otp delivery: %w", err)
	}
	return false, nil
}

func (d *queueDeliverer) Mode() string {
	return config.OTPDeliveryQueue
}

// NewDeliverer picks the delivery strategy for the configured mode.
func NewDeliverer(mode string, publisher MessagePublisher) (Deliverer, error) {
	switch mode {
	case "", config.OTPDeliveryEcho:
		return echoDeliverer{}, nil
	case config.OTPDeliveryQueue:
		if publisher == nil {
			return nil, fmt.Errorf("queue delivery requires a message publisher")
		}
		return &queueDeliverer{publisher: publisher}, nil
	}
	return nil, fmt.Errorf("unsupported otp delivery mode: %q", mode)
}
