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

// Package utils provides common utility functions.
package utils

import "time"

// GetCurrentTimeMillis returns current time in milliseconds since epoch.
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixMilli()
}

// IsExpired reports whether an expiry timestamp in milliseconds has passed.
// Zero means the value never expires.
func IsExpired(expiresAtMillis int64) bool {
	if expiresAtMillis == 0 {
		return false
	}
	return GetCurrentTimeMillis() >= expiresAtMillis
}
