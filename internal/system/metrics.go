// Package system samples host CPU and memory state for metric recording.
package system

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

type Metrics struct {
	CPUUsagePercent    float64
	MemoryUsagePercent float64
	MemoryUsedBytes    uint64
	MemoryTotalBytes   uint64
}

// Collect samples current CPU and memory usage. Individual probe failures
// leave the corresponding fields at zero.
func Collect() (*Metrics, error) {
	m := &Metrics{}

	cpuPercent, err := cpu.Percent(0, false)
	if err == nil && len(cpuPercent) > 0 {
		m.CPUUsagePercent = cpuPercent[0]
	}

	memStats, err := mem.VirtualMemory()
	if err == nil {
		m.MemoryUsagePercent = memStats.UsedPercent
		m.MemoryUsedBytes = memStats.Used
		m.MemoryTotalBytes = memStats.Total
	}

	return m, nil
}
