package service

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"signal_engine/internal/models"
	"signal_engine/internal/modules/config"
	"signal_engine/pkg/logger"
)

// Manager — сайзер и риск-менеджер портфеля.
//
// Всё изменяемое состояние (депозит, позиции, pending-ордера, счётчик id)
// общее для всех инструментов, поэтому закрыто одним мьютексом:
// два конкурентных ProcessSignal не должны прочитать один и тот же
// остаток риск-бюджета (check-then-act атомарен).
type Manager struct {
	mu sync.Mutex

	cfg       config.RiskConfig
	positions map[string]*models.Position
	pending   []models.Order
	nextID    int64
}

func NewManager(cfg config.RiskConfig) (*Manager, error) {
	if cfg.PortfolioValue <= 0 {
		return nil, errors.Errorf("risk: portfolio value %.2f <= 0", cfg.PortfolioValue)
	}
	if cfg.RiskPerTrade <= 0 || cfg.RiskPerTrade > 1 {
		return nil, errors.Errorf("risk: risk per trade %.4f outside (0,1]", cfg.RiskPerTrade)
	}
	if cfg.MaxPositionValue <= 0 {
		return nil, errors.Errorf("risk: max position value %.2f <= 0", cfg.MaxPositionValue)
	}
	return &Manager{
		cfg:       cfg,
		positions: make(map[string]*models.Position),
	}, nil
}

// ProcessSignal превращает решение в ордер. nil — нормальный исход
// (сигнал отфильтрован), не ошибка; причина уходит в лог.
func (m *Manager) ProcessSignal(sig models.TradingSignal) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sig.Confidence < m.cfg.MinConfidence {
		logger.Info("reject %s %s: confidence %.3f < %.3f",
			sig.Instrument, sig.Verdict, sig.Confidence, m.cfg.MinConfidence)
		return nil
	}

	if rr, ok := sig.RiskReward(); ok && rr < m.cfg.MinRiskReward {
		logger.Info("reject %s %s: risk/reward %.2f < %.2f",
			sig.Instrument, sig.Verdict, rr, m.cfg.MinRiskReward)
		return nil
	}

	var side models.OrderSide
	switch {
	case sig.Verdict.Bullish():
		side = models.OrderBuy
	case sig.Verdict.Bearish():
		side = models.OrderSell
	default:
		// Hold сюда доходить не должен, но и молча пропускать нельзя
		logger.Info("reject %s: hold verdict reached the sizer", sig.Instrument)
		return nil
	}

	// незащищённую позицию не сайзим никогда
	if sig.StopLoss == 0 {
		logger.Info("reject %s %s: no stop-loss", sig.Instrument, sig.Verdict)
		return nil
	}

	riskPerUnit := math.Abs(sig.Entry - sig.StopLoss)
	if riskPerUnit <= 0 || math.IsNaN(riskPerUnit) || math.IsInf(riskPerUnit, 0) {
		logger.Info("reject %s %s: risk per unit %.8f invalid", sig.Instrument, sig.Verdict, riskPerUnit)
		return nil
	}

	riskAmount := m.cfg.PortfolioValue * m.cfg.RiskPerTrade
	qty := riskAmount / riskPerUnit

	// кап по стоимости позиции
	if sig.Entry > 0 {
		if maxQty := m.cfg.MaxPositionValue / sig.Entry; qty > maxQty {
			qty = maxQty
		}
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		logger.Info("reject %s %s: sized quantity %.8f invalid", sig.Instrument, sig.Verdict, qty)
		return nil
	}

	m.nextID++
	order := models.Order{
		ID:         m.nextID,
		Instrument: sig.Instrument,
		Side:       side,
		Quantity:   qty,
		Price:      sig.Entry,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Status:     models.OrderPending,
		CreatedAt:  time.Now(),
	}
	m.pending = append(m.pending, order)

	logger.Info("order #%d %s %s qty=%.6f @ %.6f sl=%.6f tp=%.6f (%s)",
		order.ID, order.Side, order.Instrument, order.Quantity, order.Price,
		order.StopLoss, order.TakeProfit, sig.Source)
	return &order
}

// ApplyFill — отчёт об исполнении от внешнего шлюза. Двигает позицию
// (VWAP по входу) и убирает ордер из pending при полном исполнении.
func (m *Manager) ApplyFill(orderID int64, qty, price float64) error {
	if qty <= 0 || price <= 0 {
		return errors.Errorf("risk: bad fill qty=%.8f price=%.8f", qty, price)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.pending {
		if m.pending[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errors.Errorf("risk: unknown pending order %d", orderID)
	}
	ord := &m.pending[idx]
	if qty > ord.Quantity {
		qty = ord.Quantity
	}

	signed := qty
	if ord.Side == models.OrderSell {
		signed = -qty
	}

	pos := m.positions[ord.Instrument]
	if pos == nil {
		pos = &models.Position{Instrument: ord.Instrument}
		m.positions[ord.Instrument] = pos
	}

	newQty := pos.Quantity + signed
	switch {
	case pos.Quantity == 0 || (pos.Quantity > 0) == (signed > 0):
		// усреднение в ту же сторону
		pos.AvgEntry = (pos.AvgEntry*math.Abs(pos.Quantity) + price*qty) / (math.Abs(pos.Quantity) + qty)
	case newQty == 0:
		pos.AvgEntry = 0
	case (newQty > 0) != (pos.Quantity > 0):
		// развернулись: остаток открыт по цене филла
		pos.AvgEntry = price
	}
	pos.Quantity = newQty
	pos.Updated = time.Now()

	ord.Quantity -= qty
	if ord.Quantity <= 0 {
		ord.Status = models.OrderFilled
		m.pending = append(m.pending[:idx], m.pending[idx+1:]...)
	}
	return nil
}

// UpdatePnL пересчитывает нереализованный P&L позиции по текущей цене.
func (m *Manager) UpdatePnL(instrument string, currentPrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[instrument]
	if !ok {
		return
	}
	pos.UnrealizedPnL = (currentPrice - pos.AvgEntry) * pos.Quantity
	pos.Updated = time.Now()
}

func (m *Manager) Position(instrument string) (models.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.positions[instrument]
	if !ok {
		return models.Position{}, false
	}
	return *pos, true
}

func (m *Manager) PendingOrders() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Order, len(m.pending))
	copy(out, m.pending)
	return out
}

func (m *Manager) PortfolioValue() float64 { return m.cfg.PortfolioValue }
