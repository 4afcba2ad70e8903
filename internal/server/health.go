package server

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Health is the snapshot served by /api/health: the same figures the ops
// monitoring script samples, plus feed-side counters.
type Health struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsedMB  float64 `json:"memoryUsedMB"`
	PendingDepth  int     `json:"pendingDepth"`
	Clients       int     `json:"clients"`
}

func (s *Server) health() Health {
	h := Health{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		PendingDepth:  s.pending.Len(),
		Clients:       s.hub.ClientCount(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		h.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.MemoryPercent = vm.UsedPercent
		h.MemoryUsedMB = float64(vm.Used) / (1024 * 1024)
	}
	return h
}
