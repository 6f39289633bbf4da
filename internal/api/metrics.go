package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/annel0/voxel-sandbox/internal/sandbox"
	"github.com/shirou/gopsutil/v3/process"
)

// HealthReport ответ /health
type HealthReport struct {
	Status     string        `json:"status"`
	Time       int64         `json:"time"`
	Uptime     string        `json:"uptime"`
	MemoryMB   float64       `json:"memory_mb"`
	CPUPercent float64       `json:"cpu_percent"`
	Goroutines int           `json:"goroutines"`
	Sandbox    sandbox.Stats `json:"sandbox"`
}

// healthProbe собирает HealthReport: процесс через gopsutil, сцена через сессию
type healthProbe struct {
	started time.Time
	session *sandbox.Session
	proc    *process.Process // nil, если gopsutil не видит процесс
}

func newHealthProbe(s *sandbox.Session) *healthProbe {
	hp := &healthProbe{started: time.Now(), session: s}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		hp.proc = proc
	}
	return hp
}

func (hp *healthProbe) report() HealthReport {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r := HealthReport{
		Status:     "ok",
		Time:       time.Now().Unix(),
		Uptime:     formatUptime(time.Since(hp.started)),
		MemoryMB:   float64(m.Alloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		Sandbox:    hp.session.Stats(),
	}
	if hp.proc != nil {
		if cpu, err := hp.proc.CPUPercent(); err == nil {
			r.CPUPercent = cpu
		}
	}
	return r
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}
