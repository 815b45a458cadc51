package service

import (
	"sync"
	"time"

	"signal_engine/internal/models"
	risksvc "signal_engine/internal/modules/risk/service"
	strategysvc "signal_engine/internal/modules/strategy/service"
	"signal_engine/internal/series"
)

// Stats — счётчики для health-эндпоинта и отладки.
type Stats struct {
	Instruments int
	Candles     int64
	Signals     int64
	Orders      int64
	LastCandle  time.Time
}

// DecisionFunc — подписчик выхода оркестратора (журнал, нотификации).
type DecisionFunc func(sig models.TradingSignal, order models.Order)

// Orchestrator связывает буфер -> генераторы -> агрегатор -> сайзер.
// Единственная точка входа всей подсистемы — OnCandle.
type Orchestrator struct {
	capacity int
	agg      *strategysvc.Aggregator
	risk     *risksvc.Manager

	mu          sync.Mutex
	buffers     map[string]*series.Series
	stats       Stats
	subscribers []DecisionFunc
}

func New(bufferCapacity int, agg *strategysvc.Aggregator, risk *risksvc.Manager) *Orchestrator {
	return &Orchestrator{
		capacity: bufferCapacity,
		agg:      agg,
		risk:     risk,
		buffers:  make(map[string]*series.Series),
	}
}

// OnCandle добавляет свечу в буфер инструмента (буфер создаётся лениво),
// прогоняет агрегатор и при наличии решения отдаёт его сайзеру.
// nil — нормальный исход: по этому бару действий нет.
//
// Дедупликации и проверки порядка баров здесь нет: фид обязан
// отдавать закрытые свечи по одному инструменту хронологически.
func (o *Orchestrator) OnCandle(instrument string, candle models.Candle) *models.Order {
	o.mu.Lock()
	buf, ok := o.buffers[instrument]
	if !ok {
		buf = series.New(o.capacity)
		o.buffers[instrument] = buf
		o.stats.Instruments++
	}
	buf.Append(candle)
	history := buf.Snapshot()
	o.stats.Candles++
	o.stats.LastCandle = candle.End
	o.mu.Unlock()

	sig := o.agg.Aggregate(history, instrument)
	if sig == nil {
		return nil
	}
	o.mu.Lock()
	o.stats.Signals++
	o.mu.Unlock()

	order := o.risk.ProcessSignal(*sig)
	if order == nil {
		return nil
	}
	o.mu.Lock()
	o.stats.Orders++
	subs := o.subscribers
	o.mu.Unlock()

	for _, fn := range subs {
		fn(*sig, *order)
	}
	return order
}

// Subscribe регистрирует подписчика на эмитированные решения.
// Вызывается при старте, до первого OnCandle.
func (o *Orchestrator) Subscribe(fn DecisionFunc) {
	o.mu.Lock()
	o.subscribers = append(o.subscribers, fn)
	o.mu.Unlock()
}

func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// History — снапшот истории инструмента (read-only доступ для отладки).
func (o *Orchestrator) History(instrument string) []models.Candle {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf, ok := o.buffers[instrument]
	if !ok {
		return nil
	}
	return buf.Snapshot()
}
