package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kindalike/backend/internal/database"
)

// Pinger checks reachability of an external provider.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker probes the service's backing dependencies.
type Checker struct {
	dbManager *database.Manager
	yelp      Pinger
	logger    *logrus.Logger
}

// NewChecker creates a checker. yelp may be nil to skip the provider probe.
func NewChecker(dbManager *database.Manager, yelp Pinger, logger *logrus.Logger) *Checker {
	return &Checker{
		dbManager: dbManager,
		yelp:      yelp,
		logger:    logger,
	}
}

// ServiceHealth is the status of one dependency.
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth aggregates the dependency checks. Status is "healthy" only
// when every dependency is.
type OverallHealth struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Timestamp string          `json:"timestamp"`
	Services  []ServiceHealth `json:"services"`
}

// CheckPostgreSQL pings the database.
func (h *Checker) CheckPostgreSQL() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingDatabase()
	return h.result("postgresql", err, start)
}

// CheckRedis pings the cache.
func (h *Checker) CheckRedis() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingRedis()
	return h.result("redis", err, start)
}

func (h *Checker) result(name string, err error, start time.Time) ServiceHealth {
	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", name).Error("Health check failed")
	}

	return ServiceHealth{
		Name:         name,
		Status:       status,
		ResponseTime: int(time.Since(start).Milliseconds()),
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckYelp probes the business-search provider.
func (h *Checker) CheckYelp() ServiceHealth {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := h.yelp.Ping(ctx)
	return h.result("yelp", err, start)
}

// CheckAll runs every dependency check.
func (h *Checker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
	}
	if h.yelp != nil {
		services = append(services, h.CheckYelp())
	}

	status := "healthy"
	for _, svc := range services {
		if svc.Status != "healthy" {
			status = "unhealthy"
			break
		}
	}

	return OverallHealth{
		Status:    status,
		Service:   "kindalike-api",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	}
}

// Handler serves the health endpoint; 503 when any dependency is down.
func (h *Checker) Handler(c *gin.Context) {
	overall := h.CheckAll()

	code := http.StatusOK
	if overall.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, overall)
}
