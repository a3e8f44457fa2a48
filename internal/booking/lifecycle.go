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

package booking

import (
	"errors"
	"fmt"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
)

// ErrInvalidTransition is returned when the current state does not allow the requested transition.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Lifecycle is the state machine of a single booking. It is not safe for concurrent use;
// the owning Session serializes access.
type Lifecycle struct {
	state   model.LifecycleState
	history []model.Transition
}

// NewLifecycle returns a lifecycle in the Created state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: model.StateCreated}
}

// State returns the current state.
func (l *Lifecycle) State() model.LifecycleState {
	return l.state
}

// History returns the transitions taken so far, oldest first.
func (l *Lifecycle) History() []model.Transition {
	out := make([]model.Transition, len(l.history))
	copy(out, l.history)
	return out
}

// Start moves a new booking to AwaitingAuthorization.
func (l *Lifecycle) Start() (model.Transition, error) {
	if l.state != model.StateCreated {
		return model.Transition{}, l.invalid("start")
	}
	return l.advance(model.StateAwaitingAuthorization, model.TriggerCreated), nil
}

// Authorize advances from AwaitingAuthorization by steps: 1 for consent, 2 for override.
func (l *Lifecycle) Authorize(steps int, trigger string) (model.Transition, error) {
	if l.state != model.StateAwaitingAuthorization {
		return model.Transition{}, l.invalid("authorize")
	}
	if steps != 1 && steps != 2 {
		return model.Transition{}, fmt.Errorf("%w: authorization advances 1 or 2 steps, got %d", ErrInvalidTransition, steps)
	}
	to, _ := model.StateAtStep(l.state.Step() + steps)
	return l.advance(to, trigger), nil
}

// Proceed takes the automatic step from Authorized to AwaitingFulfillment.
func (l *Lifecycle) Proceed() (model.Transition, error) {
	if l.state != model.StateAuthorized {
		return model.Transition{}, l.invalid("proceed to fulfillment")
	}
	return l.advance(model.StateAwaitingFulfillment, model.TriggerFulfillmentStarted), nil
}

// Fulfill completes the booking.
func (l *Lifecycle) Fulfill() (model.Transition, error) {
	if l.state != model.StateAwaitingFulfillment {
		return model.Transition{}, l.invalid("fulfill")
	}
	return l.advance(model.StateFulfilled, model.TriggerFulfillmentVerified), nil
}

// Reject is only possible before the booking enters the consent path.
func (l *Lifecycle) Reject() (model.Transition, error) {
	if l.state != model.StateCreated {
		return model.Transition{}, l.invalid("reject")
	}
	return l.advance(model.StateRejected, model.TriggerRejected), nil
}

func (l *Lifecycle) advance(to model.LifecycleState, trigger string) model.Transition {
	t := model.Transition{From: l.state, To: to, Trigger: trigger}
	l.state = to
	l.history = append(l.history, t)
	return t
}

func (l *Lifecycle) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, l.state)
}
