package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// InitRateLimit bounds registration attempts per customer (falling back to
// the caller IP) using a one minute Redis window. Without Redis, or when the
// cache errors, it fails open.
func InitRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			CustomerXID string `json:"customer_xid"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.CustomerXID)
		if subject == "" {
			subject = c.IP()
		}
		key := "rl:init:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many registration attempts, try again later")
		}
		return c.Next()
	}
}
