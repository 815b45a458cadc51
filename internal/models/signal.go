package models

import (
	"math"
	"time"
)

// Signal — вердикт по инструменту, сила от -2 до +2.
type Signal int

const (
	StrongSell Signal = -2
	Sell       Signal = -1
	Hold       Signal = 0
	Buy        Signal = 1
	StrongBuy  Signal = 2
)

// Strength is the signed weight the aggregator scores with.
func (s Signal) Strength() float64 { return float64(s) }

func (s Signal) Bullish() bool { return s > Hold }
func (s Signal) Bearish() bool { return s < Hold }

func (s Signal) String() string {
	switch s {
	case StrongSell:
		return "STRONG_SELL"
	case Sell:
		return "SELL"
	case Buy:
		return "BUY"
	case StrongBuy:
		return "STRONG_BUY"
	default:
		return "HOLD"
	}
}

// TradingSignal — решение генератора или агрегатора.
// StopLoss/TakeProfit == 0 означает "уровень не задан".
type TradingSignal struct {
	Instrument string
	Verdict    Signal
	Confidence float64 // всегда в [0,1]
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	CreatedAt  time.Time
	Source     string // имя генератора либо "aggregated"
	Reason     string
}

// NewTradingSignal clamps confidence into [0,1]; non-finite confidence becomes 0.
func NewTradingSignal(instrument string, verdict Signal, confidence, entry float64, source string) TradingSignal {
	if math.IsNaN(confidence) || math.IsInf(confidence, 0) {
		confidence = 0
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return TradingSignal{
		Instrument: instrument,
		Verdict:    verdict,
		Confidence: confidence,
		Entry:      entry,
		CreatedAt:  time.Now(),
		Source:     source,
	}
}

// RiskReward = |tp-entry| / |entry-sl|. ok==false когда уровней нет
// или стоп совпадает с входом.
func (s TradingSignal) RiskReward() (float64, bool) {
	if s.StopLoss == 0 || s.TakeProfit == 0 {
		return 0, false
	}
	risk := math.Abs(s.Entry - s.StopLoss)
	if risk == 0 {
		return 0, false
	}
	rr := math.Abs(s.TakeProfit-s.Entry) / risk
	if math.IsNaN(rr) || math.IsInf(rr, 0) {
		return 0, false
	}
	return rr, true
}
