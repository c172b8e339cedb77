package importer

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

const (
	// memoryPerSourceGB is the working-set estimate for one in-flight
	// source: batch buffers, decoder state, and SQLite page cache.
	memoryPerSourceGB = 1.0

	// memoryBufferGB stays reserved for the rest of the system.
	memoryBufferGB = 1.5

	maxRecommendedParallelism = 16
)

// getMemoryStats returns total and available memory in bytes.
func getMemoryStats() (total uint64, available uint64, err error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to get memory stats")
	}
	return v.Total, v.Available, nil
}

// recommendedParallelism estimates how many sources can run at once in
// the available memory. Always allows at least one.
func recommendedParallelism(availableGB float64) int {
	if availableGB < memoryBufferGB {
		return 1
	}

	recommended := int((availableGB - memoryBufferGB) / memoryPerSourceGB)
	if recommended < 1 {
		return 1
	}
	if recommended > maxRecommendedParallelism {
		return maxRecommendedParallelism
	}
	return recommended
}

// checkMemoryPressure compares the configured fan-out against what the
// machine's memory supports. Returns a warning message, or empty when
// the bound looks safe or memory cannot be read.
func checkMemoryPressure(maxParallel int) string {
	total, available, err := getMemoryStats()
	if err != nil {
		return ""
	}

	availableGB := float64(available) / 1024 / 1024 / 1024
	totalGB := float64(total) / 1024 / 1024 / 1024
	recommended := recommendedParallelism(availableGB)

	if maxParallel > recommended {
		return fmt.Sprintf(
			"Parallel source count (%d) exceeds recommended (%d) for available memory (%.1f/%.1fGB). "+
				"Consider reducing parallelism to prevent memory pressure.",
			maxParallel, recommended, totalGB-availableGB, totalGB)
	}
	return ""
}
