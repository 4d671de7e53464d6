package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyCacheKey = "idempotency_cache_key"
	IdempotencyLockKey  = "idempotency_lock_key"

	idempotencyLockTTL = 30 * time.Second
)

// Idempotency replays the cached response of a POST carrying an
// Idempotency-Key header. Handlers store their response under
// IdempotencyCacheKey and release IdempotencyLockKey when done.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID := c.GetString("user_id_validated")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached any
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				c.Header("Idempotent-Replay", "true")
				response.Success(c, http.StatusOK, cached, nil)
				c.Abort()
				return
			}
		}

		// Lock expiry bounds how long a crashed request can block retries.
		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			contextutil.GetLogger(ctx, zap.L()).Warn("idempotency lock unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !isNew {
			response.Error(c, http.StatusConflict, "PROCESSING", "Request with this Idempotency-Key is still being processed", nil)
			c.Abort()
			return
		}

		c.Set(IdempotencyCacheKey, cacheKey)
		c.Set(IdempotencyLockKey, lockKey)

		c.Next()
	}
}

// GuardedWrite builds the handler chain for an idempotent write. RBAC runs
// before Idempotency so a forbidden caller never takes the lock. rdb may be
// nil, in which case the chain is authorization plus handler.
func GuardedWrite(service RBACService, resource, action string, rdb *redis.Client, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{RBACAuthorize(service, resource, action)}
	if rdb != nil {
		chain = append(chain, Idempotency(rdb))
	}
	return append(chain, h)
}
