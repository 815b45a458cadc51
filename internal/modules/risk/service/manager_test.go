package service

import (
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"

	"signal_engine/internal/models"
	"signal_engine/internal/modules/config"
	"signal_engine/pkg/logger"
)

func init() {
	logger.InfoLogger = zap.NewNop()
	logger.FatalLogger = zap.NewNop()
}

func testConfig() config.RiskConfig {
	return config.RiskConfig{
		PortfolioValue:   100_000,
		RiskPerTrade:     0.02,
		MaxPositionValue: 10_000,
		MinConfidence:    0.3,
		MinRiskReward:    1.5,
	}
}

func buySignal(confidence, entry, sl, tp float64) models.TradingSignal {
	sig := models.NewTradingSignal("BTC-USDT", models.Buy, confidence, entry, "test")
	sig.StopLoss = sl
	sig.TakeProfit = tp
	return sig
}

func TestNewManagerValidatesConfig(t *testing.T) {
	bad := testConfig()
	bad.PortfolioValue = 0
	if _, err := NewManager(bad); err == nil {
		t.Fatalf("expected error for zero portfolio")
	}
	bad = testConfig()
	bad.RiskPerTrade = 0
	if _, err := NewManager(bad); err == nil {
		t.Fatalf("expected error for zero risk fraction")
	}
	bad = testConfig()
	bad.RiskPerTrade = 1.5
	if _, err := NewManager(bad); err == nil {
		t.Fatalf("expected error for risk fraction > 1")
	}
}

func TestPositionValueCap(t *testing.T) {
	m, err := NewManager(testConfig())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	// риск 2000, стоп-дистанция 2 => сырое qty 1000, кап 10000/100 = 100
	ord := m.ProcessSignal(buySignal(0.8, 100, 98, 106))
	if ord == nil {
		t.Fatalf("expected an order")
	}
	if math.Abs(ord.Quantity-100) > 1e-9 {
		t.Fatalf("expected capped quantity 100, got %.4f", ord.Quantity)
	}
	if ord.Quantity*ord.Price > testConfig().MaxPositionValue+1e-9 {
		t.Fatalf("position value above cap: %.2f", ord.Quantity*ord.Price)
	}
	if ord.Status != models.OrderPending {
		t.Fatalf("expected pending status, got %s", ord.Status)
	}
}

func TestCapitalAtRiskWithinBudget(t *testing.T) {
	m, _ := NewManager(testConfig())
	// стоп-дистанция 50: сырое qty 40, кап не срабатывает (40*100=4000)
	ord := m.ProcessSignal(buySignal(0.9, 100, 50, 200))
	if ord == nil {
		t.Fatalf("expected an order")
	}
	budget := testConfig().PortfolioValue * testConfig().RiskPerTrade
	atRisk := ord.Quantity * math.Abs(ord.Price-ord.StopLoss)
	if atRisk > budget+1e-6 {
		t.Fatalf("capital at risk %.2f above budget %.2f", atRisk, budget)
	}
}

func TestConfidenceBoundary(t *testing.T) {
	m, _ := NewManager(testConfig())
	if ord := m.ProcessSignal(buySignal(0.2999, 100, 98, 106)); ord != nil {
		t.Fatalf("expected rejection below minimum confidence")
	}
	// ровно на пороге — проходит
	if ord := m.ProcessSignal(buySignal(0.3, 100, 98, 106)); ord == nil {
		t.Fatalf("expected acceptance at the confidence threshold")
	}
}

func TestMissingStopLossRejected(t *testing.T) {
	m, _ := NewManager(testConfig())
	sig := models.NewTradingSignal("BTC-USDT", models.Buy, 1.0, 100, "test")
	if ord := m.ProcessSignal(sig); ord != nil {
		t.Fatalf("unprotected signal must never be sized")
	}
}

func TestPoorRiskRewardRejected(t *testing.T) {
	m, _ := NewManager(testConfig())
	// rr = 2/2 = 1 < 1.5
	if ord := m.ProcessSignal(buySignal(0.9, 100, 98, 102)); ord != nil {
		t.Fatalf("expected rejection on poor risk/reward")
	}
}

func TestHoldRejectedDefensively(t *testing.T) {
	m, _ := NewManager(testConfig())
	sig := models.NewTradingSignal("BTC-USDT", models.Hold, 1.0, 100, "test")
	sig.StopLoss = 98
	if ord := m.ProcessSignal(sig); ord != nil {
		t.Fatalf("hold must never produce an order")
	}
}

func TestZeroRiskPerUnitRejected(t *testing.T) {
	m, _ := NewManager(testConfig())
	sig := models.NewTradingSignal("BTC-USDT", models.Buy, 0.9, 100, "test")
	sig.StopLoss = 100 // стоп на входе
	if ord := m.ProcessSignal(sig); ord != nil {
		t.Fatalf("expected rejection on zero risk per unit")
	}
}

func TestSellOrderSide(t *testing.T) {
	m, _ := NewManager(testConfig())
	sig := models.NewTradingSignal("BTC-USDT", models.StrongSell, 0.9, 100, "test")
	sig.StopLoss = 104
	sig.TakeProfit = 90
	ord := m.ProcessSignal(sig)
	if ord == nil {
		t.Fatalf("expected a sell order")
	}
	if ord.Side != models.OrderSell {
		t.Fatalf("expected SELL side, got %s", ord.Side)
	}
}

func TestOrderIDsMonotonic(t *testing.T) {
	m, _ := NewManager(testConfig())
	var wg sync.WaitGroup
	const n = 20
	orders := make([]*models.Order, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orders[i] = m.ProcessSignal(buySignal(0.9, 100, 98, 106))
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for i, ord := range orders {
		if ord == nil {
			t.Fatalf("order %d missing", i)
		}
		if seen[ord.ID] {
			t.Fatalf("duplicate order id %d", ord.ID)
		}
		seen[ord.ID] = true
	}
	if len(m.PendingOrders()) != n {
		t.Fatalf("expected %d pending orders, got %d", n, len(m.PendingOrders()))
	}
}

func TestApplyFillAndPnL(t *testing.T) {
	m, _ := NewManager(testConfig())
	ord := m.ProcessSignal(buySignal(0.9, 100, 98, 106))
	if ord == nil {
		t.Fatalf("expected an order")
	}
	if err := m.ApplyFill(ord.ID, ord.Quantity, 100); err != nil {
		t.Fatalf("apply fill: %v", err)
	}
	pos, ok := m.Position("BTC-USDT")
	if !ok {
		t.Fatalf("expected a position after fill")
	}
	if pos.Quantity != ord.Quantity || pos.AvgEntry != 100 {
		t.Fatalf("unexpected position qty=%.4f entry=%.4f", pos.Quantity, pos.AvgEntry)
	}
	if len(m.PendingOrders()) != 0 {
		t.Fatalf("filled order still pending")
	}

	m.UpdatePnL("BTC-USDT", 105)
	pos, _ = m.Position("BTC-USDT")
	want := (105.0 - 100.0) * pos.Quantity
	if math.Abs(pos.UnrealizedPnL-want) > 1e-9 {
		t.Fatalf("expected pnl %.2f, got %.2f", want, pos.UnrealizedPnL)
	}
}

func TestApplyFillVWAP(t *testing.T) {
	m, _ := NewManager(testConfig())
	a := m.ProcessSignal(buySignal(0.9, 100, 98, 106))
	b := m.ProcessSignal(buySignal(0.9, 100, 98, 106))
	if a == nil || b == nil {
		t.Fatalf("expected two orders")
	}
	if err := m.ApplyFill(a.ID, 100, 100); err != nil {
		t.Fatalf("fill a: %v", err)
	}
	if err := m.ApplyFill(b.ID, 100, 110); err != nil {
		t.Fatalf("fill b: %v", err)
	}
	pos, _ := m.Position("BTC-USDT")
	if math.Abs(pos.AvgEntry-105) > 1e-9 {
		t.Fatalf("expected vwap entry 105, got %.4f", pos.AvgEntry)
	}
}

func TestApplyFillUnknownOrder(t *testing.T) {
	m, _ := NewManager(testConfig())
	if err := m.ApplyFill(42, 1, 100); err == nil {
		t.Fatalf("expected error for unknown order")
	}
}
