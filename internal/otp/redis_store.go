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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wso2/booking-workflow-api/internal/otp/model"
)

// redisStore implements challengeStore on redis. A challenge lives under one key per
// booking number and purpose, so SET overwrites the previous code and GETDEL consumes it.
type redisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func newRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) challengeStore {
	if prefix == "" {
		prefix = "otp"
	}
	return &redisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisStore) challengeKey(bookingNumber string, purpose model.Purpose) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, bookingNumber, purpose)
}

func (s *redisStore) grantKey(bookingNumber string) string {
	return fmt.Sprintf("%s-grant:%s", s.prefix, bookingNumber)
}

func (s *redisStore) Save(ctx context.Context, challenge *model.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal otp challenge: %w", err)
	}
	key := s.challengeKey(challenge.BookingNumber, challenge.Purpose)
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp challenge: %w", err)
	}
	return nil
}

func (s *redisStore) Consume(ctx context.Context, bookingNumber string, purpose model.Purpose) (*model.Challenge, error) {
	raw, err := s.client.GetDel(ctx, s.challengeKey(bookingNumber, purpose)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume otp challenge: %w", err)
	}

	var challenge model.Challenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return nil, fmt.Errorf("failed to decode otp challenge: %w", err)
	}
	return &challenge, nil
}

func (s *redisStore) Delete(ctx context.Context, bookingNumber string, purpose model.Purpose) error {
	if err := s.client.Del(ctx, s.challengeKey(bookingNumber, purpose)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp challenge: %w", err)
	}
	return nil
}

func (s *redisStore) SaveGrant(ctx context.Context, grant *model.Grant) error {
	payload, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal otp grant: %w", err)
	}
	if err := s.client.Set(ctx, s.grantKey(grant.BookingNumber), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store otp grant: %w", err)
	}
	return nil
}

func (s *redisStore) GetGrant(ctx context.Context, bookingNumber string) (*model.Grant, error) {
	raw, err := s.client.Get(ctx, s.grantKey(bookingNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read otp grant: %w", err)
	}

	var grant model.Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return nil, fmt.Errorf("failed to decode otp grant: %w", err)
	}
	return &grant, nil
}
