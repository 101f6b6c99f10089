package telemetry

import (
	"math"
	"time"
)

// DefaultStressIterations matches the diagnostic endpoint's bounded load.
const DefaultStressIterations = 5_000_000

// StressCPU runs a short bounded busy-loop so admins can verify that CPU
// monitoring reacts. Returns the elapsed time and the accumulated result
// (returned so the loop cannot be optimized away).
func StressCPU(iterations int) (time.Duration, float64) {
	if iterations <= 0 {
		iterations = DefaultStressIterations
	}
	start := time.Now()
	var sum float64
	for i := 0; i < iterations; i++ {
		sum += math.Sqrt(float64(i))
	}
	return time.Since(start), sum
}
