package pricing

import (
	"math"

	"github.com/markcheno/go-talib"
)

const (
	// minVolHistory is the fewest observations the vol estimator accepts.
	minVolHistory = 30

	tradingDaysPerYear = 252
)

// realizedVol estimates annualized volatility from a closing-price series
// (oldest first) via the standard deviation of log returns. Thin or broken
// history is a calibration failure, not a retryable one: a retry would read
// the same snapshot.
func realizedVol(history []float64) (float64, error) {
	if len(history) < minVolHistory {
		return 0, Calibrationf("insufficient history: %d observations, need %d", len(history), minVolHistory)
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		if history[i-1] <= 0 || history[i] <= 0 {
			return 0, Calibrationf("non-positive price in history")
		}
		returns = append(returns, math.Log(history[i]/history[i-1]))
	}

	dev := talib.StdDev(returns, len(returns), 1.0)
	sigma := dev[len(dev)-1]
	if math.IsNaN(sigma) || sigma <= 0 {
		return 0, Calibrationf("volatility estimate diverged")
	}
	return sigma * math.Sqrt(tradingDaysPerYear), nil
}
