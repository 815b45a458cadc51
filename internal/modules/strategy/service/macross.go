package service

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"signal_engine/internal/models"
)

// MACross — пересечение быстрой и медленной SMA по close.
// Golden cross -> BUY, death cross -> SELL, иначе сигнала нет.
// Стоп и тейк считаются от ATR: 2*ATR стоп, 3*ATR тейк.
type MACross struct {
	fast        int
	slow        int
	atrLookback int
}

func NewMACross(fast, slow, atrLookback int) (*MACross, error) {
	if fast <= 0 {
		return nil, errors.Errorf("ma cross: fast period %d <= 0", fast)
	}
	if fast >= slow {
		return nil, errors.Errorf("ma cross: fast period %d >= slow period %d", fast, slow)
	}
	if atrLookback <= 0 {
		atrLookback = 14
	}
	return &MACross{fast: fast, slow: slow, atrLookback: atrLookback}, nil
}

func (g *MACross) Name() string { return fmt.Sprintf("ma_cross_%d_%d", g.fast, g.slow) }

func (g *MACross) Generate(history []models.Candle, instrument string) *models.TradingSignal {
	// нужен ещё один бар, чтобы посмотреть на окно "свечой раньше"
	if len(history) < g.slow+1 {
		return nil
	}
	prev := history[:len(history)-1]

	fastNow, _ := SMA(history, g.fast)
	slowNow, _ := SMA(history, g.slow)
	fastPrev, _ := SMA(prev, g.fast)
	slowPrev, _ := SMA(prev, g.slow)

	var verdict models.Signal
	switch {
	case fastPrev <= slowPrev && fastNow > slowNow:
		verdict = models.Buy
	case fastPrev >= slowPrev && fastNow < slowNow:
		verdict = models.Sell
	default:
		return nil
	}

	// уверенность = относительное расхождение средних
	confidence := 0.0
	if slowNow != 0 {
		confidence = clamp01(math.Abs(fastNow-slowNow) / slowNow)
	}

	entry := history[len(history)-1].Close
	sig := models.NewTradingSignal(instrument, verdict, confidence, entry, g.Name())
	sig.Reason = fmt.Sprintf("fast=%.6f slow=%.6f prev fast=%.6f slow=%.6f", fastNow, slowNow, fastPrev, slowPrev)

	// без ATR сигнал остаётся направленным, но без уровней
	if atr, ok := ATR(history, g.atrLookback); ok && atr > 0 {
		if verdict == models.Buy {
			sig.StopLoss = entry - 2*atr
			sig.TakeProfit = entry + 3*atr
		} else {
			sig.StopLoss = entry + 2*atr
			sig.TakeProfit = entry - 3*atr
		}
	}
	return &sig
}
