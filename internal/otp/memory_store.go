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
	"sync"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
)

type challengeKey struct {
	bookingNumber string
	purpose       model.Purpose
}

// memoryStore implements challengeStore in process memory.
type memoryStore struct {
	mu         sync.Mutex
	challenges map[challengeKey]model.Challenge
	grants     map[string]model.Grant
}

func newMemoryStore() challengeStore {
	return &memoryStore{
		challenges: make(map[challengeKey]model.Challenge),
		grants:     make(map[string]model.Grant),
	}
}

func (s *memoryStore) Save(ctx context.Context, challenge *model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challengeKey{challenge.BookingNumber, challenge.Purpose}] = *challenge
	return nil
}

func (s *memoryStore) Consume(ctx context.Context, bookingNumber string, purpose model.Purpose) (*model.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{bookingNumber, purpose}
	c, ok := s.challenges[key]
	if !ok {
		return nil, nil
	}
	delete(s.challenges, key)
	return &c, nil
}

func (s *memoryStore) Delete(ctx context.Context, bookingNumber string, purpose model.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, challengeKey{bookingNumber, purpose})
	return nil
}

func (s *memoryStore) SaveGrant(ctx context.Context, grant *model.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.BookingNumber] = *grant
	return nil
}

func (s *memoryStore) GetGrant(ctx context.Context, bookingNumber string) (*model.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[bookingNumber]
	if !ok {
		return nil, nil
	}
	return &g, nil
}
