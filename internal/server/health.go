package server

import (
	"fmt"
	"net/http"
	"time"

	"SymptomCheck_V0.1/internal/symptom"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// healthHandler reports provider availability plus basic host metrics.
// Metric collection failures leave the corresponding section out.
func (s *Server) healthHandler(c echo.Context) error {
	providerStatus := "available"
	if !s.adapter.Available() {
		providerStatus = "unavailable"
	}

	body := map[string]interface{}{
		"status": "online",
		"provider": map[string]interface{}{
			"name":           s.adapter.ProviderName(),
			"status":         providerStatus,
			"model":          s.adapter.Model(),
			"schema_version": symptom.SchemaVersion,
		},
		"runtime": map[string]interface{}{
			"uptime":            time.Since(s.startedAt).Round(time.Second).String(),
			"start_time":        s.startedAt.Format(time.RFC3339),
			"websocket_clients": s.hub.Count(),
		},
	}

	if hInfo, err := host.Info(); err == nil {
		runtime := body["runtime"].(map[string]interface{})
		runtime["os"] = hInfo.OS
		runtime["platform"] = hInfo.Platform
		runtime["hostname"] = hInfo.Hostname
	}

	// Non-blocking: usage since the previous call.
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		body["cpu"] = map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
		}
	}

	if v, err := mem.VirtualMemory(); err == nil {
		body["memory"] = map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024),
			"used_gb":      fmt.Sprintf("%.2f GB", float64(v.Used)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
		}
	}

	return c.JSON(http.StatusOK, body)
}
