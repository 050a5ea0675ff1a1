package db

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// Check pings one backing service.
type Check func(ctx context.Context) error

// PoolCheck adapts a pgx pool to a Check.
func PoolCheck(pool *pgxpool.Pool) Check {
	return pool.Ping
}

// CheckResult is the outcome of one named Check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// RunChecks pings every dependency concurrently and reports them by name.
func RunChecks(ctx context.Context, checks map[string]Check) ([]CheckResult, bool) {
	results := make(chan CheckResult, len(checks))
	for name, check := range checks {
		go func(name string, check Check) {
			start := time.Now()
			err := check(ctx)
			r := CheckResult{Name: name, Healthy: err == nil, Latency: time.Since(start).String()}
			if err != nil {
				r.Error = err.Error()
			}
			results <- r
		}(name, check)
	}

	out := make([]CheckResult, 0, len(checks))
	healthy := true
	for range checks {
		r := <-results
		healthy = healthy && r.Healthy
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, healthy
}

// HealthHandler reports the database pool and every extra dependency
// (redis, mongo) registered in checks. Any failing check turns the
// response into a 503.
func HealthHandler(pool *pgxpool.Pool, checks map[string]Check) echo.HandlerFunc {
	all := map[string]Check{}
	for name, check := range checks {
		all[name] = check
	}
	if pool != nil {
		all["postgres"] = PoolCheck(pool)
	}

	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		results, healthy := RunChecks(ctx, all)
		body := map[string]interface{}{
			"status": "healthy",
			"checks": results,
		}
		if pool != nil {
			body["pool"] = GetPoolStats(pool)
		}
		if !healthy {
			body["status"] = "unhealthy"
			return c.JSON(http.StatusServiceUnavailable, body)
		}
		return c.JSON(http.StatusOK, body)
	}
}
