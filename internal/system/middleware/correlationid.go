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

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wso2/booking-workflow-api/internal/system/constants"
	"github.com/wso2/booking-workflow-api/internal/system/utils"
)

// CorrelationIDMiddleware tags every request with a correlation ID, reusing an inbound one when present.
// The ID is echoed in the response header and stored in the request context for outbound calls.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set(constants.CorrelationIDContextKey, correlationID)
		c.Header(constants.CorrelationIDHeaderName, correlationID)
		c.Request = c.Request.WithContext(utils.WithCorrelationID(c.Request.Context(), correlationID))
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	headers := []string{
		constants.CorrelationIDHeaderName,
		constants.RequestIDHeaderName,
		constants.TraceIDHeaderName,
	}
	for _, header := range headers {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}
