package engine

import (
	"context"
	"time"
)

// HealthReport 各依赖的可用状态
type HealthReport struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
}

const (
	statusAvailable     = "available"
	statusUnavailable   = "unavailable"
	statusNotConfigured = "not_configured"
)

// Health 只探测数据库与缓存，模型和核查服务按是否配置判断
func (e *Engine) Health(ctx context.Context) *HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	svc := map[string]string{
		"oracle":     statusNotConfigured,
		"fact_check": statusNotConfigured,
		"security":   statusAvailable,
		"database":   statusNotConfigured,
		"cache":      statusAvailable,
	}
	if e.oracle.Available() {
		svc["oracle"] = statusAvailable
	}
	if e.factCheck != nil {
		svc["fact_check"] = statusAvailable
	}
	if !e.sec.Available() {
		svc["security"] = statusUnavailable
	}
	if e.archive != nil {
		svc["database"] = statusAvailable
		if err := e.archive.Ping(ctx); err != nil {
			svc["database"] = statusUnavailable
		}
	}
	if err := e.cache.Ping(ctx); err != nil {
		svc["cache"] = statusUnavailable
	}

	status := "healthy"
	for _, s := range svc {
		if s == statusUnavailable {
			status = "degraded"
			break
		}
	}
	return &HealthReport{Status: status, Services: svc, Timestamp: e.now().UTC()}
}
