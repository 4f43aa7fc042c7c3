package kde

import "math"

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func isPositive(x float64) bool {
	return isFinite(x) && x > 0
}

// clipNegative sets negative values to zero and returns how many were changed.
func clipNegative(values []float64) int {
	cnt := 0
	for i, v := range values {
		if v < 0 {
			values[i] = 0
			cnt++
		}
	}
	return cnt
}
