package service

import (
	"math"
	"testing"

	"signal_engine/internal/models"
)

// decline14 — 15 цен с 14 изменениями: сумма гейнов 9, лоссов 41 => RSI 18.
func decline14() []models.Candle {
	prices := make([]float64, 0, 15)
	p := 100.0
	for i := 0; i < 13; i++ {
		prices = append(prices, p)
	}
	prices = append(prices, p+9)  // единственный рост
	prices = append(prices, p-32) // 109 -> 68, падение на 41
	return closes(prices...)
}

func TestNewRSIRejectsBadConfig(t *testing.T) {
	if _, err := NewRSI(0, 70, 30); err == nil {
		t.Fatalf("expected error for zero period")
	}
	if _, err := NewRSI(14, 30, 70); err == nil {
		t.Fatalf("expected error for inverted thresholds")
	}
	if _, err := NewRSI(14, 100, 30); err == nil {
		t.Fatalf("expected error for overbought at 100")
	}
}

func TestRSIValueOversold(t *testing.T) {
	g, err := NewRSI(14, 70, 30)
	if err != nil {
		t.Fatalf("new rsi: %v", err)
	}
	rsi, ok := g.Value(decline14())
	if !ok {
		t.Fatalf("expected rsi to be computable")
	}
	if math.Abs(rsi-18) > 1e-9 {
		t.Fatalf("expected rsi 18, got %.4f", rsi)
	}
}

func TestOversoldBounce(t *testing.T) {
	g, _ := NewRSI(14, 70, 30)
	sig := g.Generate(decline14(), "ETH-USDT")
	if sig == nil {
		t.Fatalf("expected a buy signal at rsi 18")
	}
	if !sig.Verdict.Bullish() {
		t.Fatalf("expected bullish verdict, got %s", sig.Verdict)
	}
	// (30-18)/30 = 0.4
	if math.Abs(sig.Confidence-0.4) > 1e-9 {
		t.Fatalf("expected confidence 0.4, got %.4f", sig.Confidence)
	}
}

func TestOverboughtSell(t *testing.T) {
	g, _ := NewRSI(14, 70, 30)
	// зеркало: один большой рост, одно маленькое падение => RSI 82
	prices := make([]float64, 0, 15)
	p := 100.0
	for i := 0; i < 13; i++ {
		prices = append(prices, p)
	}
	prices = append(prices, p+41)
	prices = append(prices, p+32)
	sig := g.Generate(closes(prices...), "ETH-USDT")
	if sig == nil {
		t.Fatalf("expected a sell signal at rsi 82")
	}
	if !sig.Verdict.Bearish() {
		t.Fatalf("expected bearish verdict, got %s", sig.Verdict)
	}
	if math.Abs(sig.Confidence-0.4) > 1e-9 {
		t.Fatalf("expected confidence 0.4, got %.4f", sig.Confidence)
	}
}

func TestRSIPureGainsIsHundred(t *testing.T) {
	g, _ := NewRSI(14, 70, 30)
	prices := make([]float64, 0, 15)
	for i := 0; i <= 14; i++ {
		prices = append(prices, 100+float64(i))
	}
	rsi, ok := g.Value(closes(prices...))
	if !ok || rsi != 100 {
		t.Fatalf("expected rsi 100 on pure gains, got %.4f ok=%v", rsi, ok)
	}
	sig := g.Generate(closes(prices...), "ETH-USDT")
	if sig == nil || !sig.Verdict.Bearish() {
		t.Fatalf("expected overbought sell at rsi 100")
	}
	if sig.Confidence != 1 {
		t.Fatalf("expected confidence 1 at the extreme, got %.4f", sig.Confidence)
	}
}

func TestRSIInsufficientHistory(t *testing.T) {
	g, _ := NewRSI(14, 70, 30)
	if sig := g.Generate(closes(1, 2, 3), "ETH-USDT"); sig != nil {
		t.Fatalf("expected no signal on short history")
	}
}

func TestRSIQuietMarketNoSignal(t *testing.T) {
	g, _ := NewRSI(14, 70, 30)
	prices := make([]float64, 0, 15)
	for i := 0; i <= 14; i++ {
		// чередование +1/-1 держит RSI у 50
		if i%2 == 0 {
			prices = append(prices, 100)
		} else {
			prices = append(prices, 101)
		}
	}
	if sig := g.Generate(closes(prices...), "ETH-USDT"); sig != nil {
		t.Fatalf("expected no signal in a quiet market, got %s", sig.Verdict)
	}
}
