package service

import (
	"github.com/pkg/errors"

	"signal_engine/internal/modules/config"
)

// NewAggregatorFromConfig собирает штатный набор генераторов с весами.
// Дополнительные генераторы добавляются через NewAggregator напрямую.
func NewAggregatorFromConfig(cfg *config.Config) (*Aggregator, error) {
	g := cfg.Generators

	maCross, err := NewMACross(g.MAFast, g.MASlow, g.ATRLookback)
	if err != nil {
		return nil, errors.Wrap(err, "build ma cross")
	}
	rsi, err := NewRSI(g.RSIPeriod, g.RSIOverbought, g.RSIOversold)
	if err != nil {
		return nil, errors.Wrap(err, "build rsi")
	}

	return NewAggregator([]Weighted{
		{Generator: maCross, Weight: g.MAWeight},
		{Generator: rsi, Weight: g.RSIWeight},
	})
}
