package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/pkg/runctx"
)

// Logger emits one line per API request. Successful probe and scrape hits
// (health, metrics) are skipped so scheduled traffic does not drown out real
// use of the ops surface.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			res := c.Response()
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			if res.Status < 400 && isQuietPath(req.URL.Path) {
				return nil
			}

			logger.WithContext(req.Context()).WithFields(map[string]interface{}{
				"request_id":    runctx.GetRequestID(req.Context()),
				"method":        req.Method,
				"uri":           req.RequestURI,
				"status":        res.Status,
				"route":         c.Path(),
				"remote_ip":     c.RealIP(),
				"user_agent":    req.UserAgent(),
				"response_time": time.Since(start).String(),
				"response_size": strconv.FormatInt(res.Size, 10),
			}).Info("Request")

			return nil
		}
	}
}

func isQuietPath(path string) bool {
	return strings.HasPrefix(path, "/health") || path == "/metrics"
}
