package utils

import (
	"runtime"
)

// SystemMetrics is a snapshot of the process runtime.
type SystemMetrics struct {
	Goroutines int     `json:"goroutines"`
	MemoryMB   float64 `json:"memory_mb"`
	HeapMB     float64 `json:"heap_mb"`
	NumGC      uint32  `json:"num_gc"`
}

// GetMetrics returns current runtime statistics.
func GetMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		Goroutines: runtime.NumGoroutine(),
		// Total memory obtained from the OS.
		MemoryMB: float64(m.Sys) / 1024.0 / 1024.0,
		HeapMB:   float64(m.HeapAlloc) / 1024.0 / 1024.0,
		NumGC:    m.NumGC,
	}
}
