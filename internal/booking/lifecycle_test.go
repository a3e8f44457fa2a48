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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/booking-workflow-api/internal/booking/model"
)

func TestLifecycle_ConsentPath(t *testing.T) {
	l := NewLifecycle()
	assert.Equal(t, model.StateCreated, l.State())

	_, err := l.Start()
	require.NoError(t, err)

	tr, err := l.Authorize(1, model.TriggerConsentVerified)
	require.NoError(t, err)
	assert.Equal(t, model.StateAuthorized, tr.To)
	assert.Equal(t, 1, tr.To.Step()-tr.From.Step())

	_, err = l.Proceed()
	require.NoError(t, err)
	_, err = l.Fulfill()
	require.NoError(t, err)

	assert.Equal(t, model.StateFulfilled, l.State())
	assert.True(t, l.State().IsTerminal())
	assert.Len(t, l.History(), 4)
}

func TestLifecycle_OverrideSkipsConsentCheckpoint(t *testing.T) {
	l := NewLifecycle()
	_, err := l.Start()
	require.NoError(t, err)

	tr, err := l.Authorize(2, model.TriggerOverrideVerified)
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingAuthorization, tr.From)
	assert.Equal(t, model.StateAwaitingFulfillment, tr.To)
	assert.Equal(t, 2, tr.To.Step()-tr.From.Step())

	for _, h := range l.History() {
		assert.NotEqual(t, model.StateAuthorized, h.To)
	}
}

func TestLifecycle_RejectOnlyFromCreated(t *testing.T) {
	l := NewLifecycle()
	_, err := l.Reject()
	require.NoError(t, err)
	assert.Equal(t, model.StateRejected, l.State())

	_, err = l.Start()
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	l = NewLifecycle()
	_, err = l.Start()
	require.NoError(t, err)
	_, err = l.Reject()
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, model.StateAwaitingAuthorization, l.State())
}

func TestLifecycle_IllegalTransitionsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name string
		prep func(l *Lifecycle)
		act  func(l *Lifecycle) error
		want model.LifecycleState
	}{
		{
			name: "authorize before start",
			prep: func(l *Lifecycle) {},
			act: func(l *Lifecycle) error {
				_, err := l.Authorize(1, model.TriggerConsentVerified)
				return err
			},
			want: model.StateCreated,
		},
		{
			name: "fulfill before authorization",
			prep: func(l *Lifecycle) { _, _ = l.Start() },
			act: func(l *Lifecycle) error {
				_, err := l.Fulfill()
				return err
			},
			want: model.StateAwaitingAuthorization,
		},
		{
			name: "authorize three steps",
			prep: func(l *Lifecycle) { _, _ = l.Start() },
			act: func(l *Lifecycle) error {
				_, err := l.Authorize(3, model.TriggerOverrideVerified)
				return err
			},
			want: model.StateAwaitingAuthorization,
		},
		{
			name: "authorize twice",
			prep: func(l *Lifecycle) {
				_, _ = l.Start()
				_, _ = l.Authorize(1, model.TriggerConsentVerified)
			},
			act: func(l *Lifecycle) error {
				_, err := l.Authorize(1, model.TriggerConsentVerified)
				return err
			},
			want: model.StateAuthorized,
		},
		{
			name: "proceed from awaiting authorization",
			prep: func(l *Lifecycle) { _, _ = l.Start() },
			act: func(l *Lifecycle) error {
				_, err := l.Proceed()
				return err
			},
			want: model.StateAwaitingAuthorization,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLifecycle()
			tc.prep(l)
			err := tc.act(l)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, tc.want, l.State())
		})
	}
}

func TestLifecycle_FulfilledIsTerminal(t *testing.T) {
	l := NewLifecycle()
	_, _ = l.Start()
	_, _ = l.Authorize(2, model.TriggerOverrideVerified)
	_, err := l.Fulfill()
	require.NoError(t, err)

	_, err = l.Fulfill()
	assert.Error(t, err)
	_, err = l.Reject()
	assert.Error(t, err)
	assert.Equal(t, model.StateFulfilled, l.State())
}
