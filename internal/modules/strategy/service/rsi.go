package service

import (
	"fmt"

	"github.com/pkg/errors"

	"signal_engine/internal/models"
)

// RSI — осциллятор относительной силы за period изменений цены.
// Ниже oversold -> BUY, выше overbought -> SELL, иначе сигнала нет.
type RSI struct {
	period     int
	overbought float64
	oversold   float64
}

func NewRSI(period int, overbought, oversold float64) (*RSI, error) {
	if period <= 0 {
		return nil, errors.Errorf("rsi: period %d <= 0", period)
	}
	if oversold <= 0 || overbought >= 100 || oversold >= overbought {
		return nil, errors.Errorf("rsi: bad thresholds oversold=%.1f overbought=%.1f", oversold, overbought)
	}
	return &RSI{period: period, overbought: overbought, oversold: oversold}, nil
}

func (g *RSI) Name() string { return fmt.Sprintf("rsi_%d", g.period) }

// Value считает RSI по последним period изменениям.
// Конвенция: avgLoss == 0 -> RSI = 100.
func (g *RSI) Value(history []models.Candle) (float64, bool) {
	if len(history) < g.period+1 {
		return 0, false
	}
	start := len(history) - g.period
	var gains, losses float64
	for i := start; i < len(history); i++ {
		change := history[i].Close - history[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}
	avgGain := gains / float64(g.period)
	avgLoss := losses / float64(g.period)
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

func (g *RSI) Generate(history []models.Candle, instrument string) *models.TradingSignal {
	rsi, ok := g.Value(history)
	if !ok {
		return nil
	}

	var verdict models.Signal
	var confidence float64
	switch {
	case rsi < g.oversold:
		verdict = models.Buy
		// насколько глубоко ушли за порог, к оставшейся дистанции до 0
		confidence = clamp01((g.oversold - rsi) / g.oversold)
	case rsi > g.overbought:
		verdict = models.Sell
		confidence = clamp01((rsi - g.overbought) / (100 - g.overbought))
	default:
		return nil
	}

	entry := history[len(history)-1].Close
	sig := models.NewTradingSignal(instrument, verdict, confidence, entry, g.Name())
	sig.Reason = fmt.Sprintf("rsi=%.2f oversold=%.1f overbought=%.1f", rsi, g.oversold, g.overbought)
	return &sig
}
