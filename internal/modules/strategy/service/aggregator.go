package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"signal_engine/internal/models"
	"signal_engine/pkg/logger"
)

// SourceAggregated — provenance агрегированных сигналов.
const SourceAggregated = "aggregated"

// пороги маппинга нормированного скора в вердикт
const (
	strongThreshold = 1.5
	actThreshold    = 0.5
)

type Weighted struct {
	Generator Generator
	Weight    float64
}

// Aggregator сводит мнения генераторов в одно решение.
//
// score = strength * confidence * weight, нормируется суммой весов
// сработавших генераторов. Один шумный генератор не может в одиночку
// дотащить агрегат до Strong-порога без высокой собственной уверенности
// и веса, а согласие генераторов только усиливает |score|.
type Aggregator struct {
	generators []Weighted
}

func NewAggregator(generators []Weighted) (*Aggregator, error) {
	for _, w := range generators {
		if w.Generator == nil {
			return nil, errors.New("aggregator: nil generator")
		}
		if w.Weight <= 0 {
			return nil, errors.Errorf("aggregator: weight %.4f <= 0 for %s", w.Weight, w.Generator.Name())
		}
	}
	return &Aggregator{generators: generators}, nil
}

func (a *Aggregator) Generators() []Weighted { return a.generators }

// Aggregate возвращает nil когда ни один генератор не высказался
// или итоговый вердикт Hold.
func (a *Aggregator) Aggregate(history []models.Candle, instrument string) *models.TradingSignal {
	var (
		scoreSum   float64
		weightSum  float64
		entrySum   float64
		slSum      float64
		slN        int
		tpSum      float64
		tpN        int
		contrib    []*models.TradingSignal
		reasonsBuf strings.Builder
	)

	for _, w := range a.generators {
		sig := w.Generator.Generate(history, instrument)
		if sig == nil {
			continue
		}
		score := sig.Verdict.Strength() * sig.Confidence * w.Weight
		if math.IsNaN(score) || math.IsInf(score, 0) {
			// numeric degeneracy: мнение отбрасываем, решение не портим
			continue
		}
		scoreSum += score
		weightSum += w.Weight
		entrySum += sig.Entry
		contrib = append(contrib, sig)
		fmt.Fprintf(&reasonsBuf, "%s=%s(%.2f) ", sig.Source, sig.Verdict, sig.Confidence)
	}

	if len(contrib) == 0 || weightSum == 0 {
		return nil
	}

	score := scoreSum / weightSum
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil
	}

	var verdict models.Signal
	switch {
	case score > strongThreshold:
		verdict = models.StrongBuy
	case score > actThreshold:
		verdict = models.Buy
	case score < -strongThreshold:
		verdict = models.StrongSell
	case score < -actThreshold:
		verdict = models.Sell
	default:
		// Hold наружу не отдаём; сильный конфликт мнений тоже схлопывается сюда
		logger.Debug("aggregate %s: score %.4f in dead zone, no action", instrument, score)
		return nil
	}

	// уровни берём средними по согласным с вердиктом участникам
	for _, sig := range contrib {
		if sig.Verdict.Bullish() != verdict.Bullish() {
			continue
		}
		if sig.StopLoss != 0 {
			slSum += sig.StopLoss
			slN++
		}
		if sig.TakeProfit != 0 {
			tpSum += sig.TakeProfit
			tpN++
		}
	}

	out := models.NewTradingSignal(
		instrument,
		verdict,
		math.Min(math.Abs(score)/2, 1),
		entrySum/float64(len(contrib)),
		SourceAggregated,
	)
	if slN > 0 {
		out.StopLoss = slSum / float64(slN)
	}
	if tpN > 0 {
		out.TakeProfit = tpSum / float64(tpN)
	}
	out.Reason = fmt.Sprintf("score=%.4f %s", score, strings.TrimSpace(reasonsBuf.String()))
	return &out
}
