package util

import "runtime"

// HeapAllocMB is the live heap in MiB, as reported by the health check next
// to the number of cached parse trees.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc >> 20
}
