package service

import (
	"math"

	"signal_engine/internal/models"
)

// SMA по ценам закрытия последних period свечей.
// ok==false когда истории меньше периода.
func SMA(history []models.Candle, period int) (float64, bool) {
	if period <= 0 || len(history) < period {
		return 0, false
	}
	sum := 0.0
	for _, c := range history[len(history)-period:] {
		sum += c.Close
	}
	return sum / float64(period), true
}

// ATR — средний истинный диапазон за lookback баров.
// true range = max(high-low, |high-prevClose|, |low-prevClose|),
// поэтому нужна lookback+1 свеча.
func ATR(history []models.Candle, lookback int) (float64, bool) {
	if lookback <= 0 || len(history) < lookback+1 {
		return 0, false
	}
	start := len(history) - lookback
	sum := 0.0
	for i := start; i < len(history); i++ {
		c := history[i]
		prevClose := history[i-1].Close
		tr := c.High - c.Low
		if hc := math.Abs(c.High - prevClose); hc > tr {
			tr = hc
		}
		if lc := math.Abs(c.Low - prevClose); lc > tr {
			tr = lc
		}
		sum += tr
	}
	return sum / float64(lookback), true
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
