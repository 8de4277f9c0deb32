package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/infra"
)

const (
	depOK    = "connected"
	depError = "error"
)

// Health answers 200 while Postgres and Redis respond and 503 otherwise.
// Breakers and the count of parked closing reports are reported alongside
// but never turn the check red.
func Health(db *gorm.DB, rdb *redis.Client, breakers map[string]*infra.CircuitBreaker, dlq func(context.Context) (int64, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		deps := map[string]string{
			"db":    estadoDep(pingDB(ctx, db)),
			"redis": estadoDep(rdb.Ping(ctx).Err()),
		}
		sano := deps["db"] == depOK && deps["redis"] == depOK

		body := gin.H{"ok": sano, "db": deps["db"], "redis": deps["redis"]}

		snaps := make(map[string]infra.CBSnapshot, len(breakers))
		for name, cb := range breakers {
			snaps[name] = cb.Snapshot()
		}
		body["breakers"] = snaps

		if dlq != nil && deps["redis"] == depOK {
			if n, err := dlq(ctx); err == nil {
				body["reportes_fallidos"] = n
			}
		}

		status := http.StatusOK
		if !sano {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func estadoDep(err error) string {
	if err != nil {
		return depError
	}
	return depOK
}
