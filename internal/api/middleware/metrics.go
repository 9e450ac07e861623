package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/communityhub/goldledger/internal/metrics"
)

// Metrics records every request except scrapes of /metrics. Paths are
// reported as route templates to keep label cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.URL.Path == "/metrics" {
			ctx.Next()
			return
		}

		start := time.Now()
		done := m.RequestStarted()

		defer func() {
			status := ctx.Writer.Status()
			r := recover()
			if r != nil {
				// Recovery further out writes the 500 after we unwind.
				status = http.StatusInternalServerError
			}

			path := ctx.FullPath()
			if path == "" {
				path = "unmatched"
			}
			done(strings.ToUpper(ctx.Request.Method), path, status, time.Since(start).Seconds())

			if r != nil {
				panic(r)
			}
		}()

		ctx.Next()
	}
}
