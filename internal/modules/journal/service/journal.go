package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/opentracing/opentracing-go"

	"signal_engine/internal/models"
	"signal_engine/pkg/db"
	"signal_engine/pkg/logger"
)

const insertDecision = `
INSERT INTO engine_decisions
    (order_id, instrument, side, quantity, price, stop_loss, take_profit,
     verdict, confidence, source, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Journal пишет принятые решения в postgres. Внешний подписчик выхода
// оркестратора: движок о нём не знает. При tx == nil журнал выключен.
type Journal struct {
	tx db.TxManager
}

func NewJournal(tx db.TxManager) *Journal {
	return &Journal{tx: tx}
}

func (j *Journal) Enabled() bool { return j != nil && j.tx != nil }

// RecordDecision сохраняет ордер вместе с породившим его сигналом.
// Ошибка журнала не останавливает торговый цикл — только лог.
func (j *Journal) RecordDecision(ctx context.Context, sig models.TradingSignal, ord models.Order) {
	if !j.Enabled() {
		return
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "journal.record_decision")
	defer span.Finish()

	err := j.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, insertDecision,
			ord.ID, ord.Instrument, string(ord.Side), ord.Quantity, ord.Price,
			ord.StopLoss, ord.TakeProfit,
			sig.Verdict.String(), sig.Confidence, sig.Source, sig.Reason, ord.CreatedAt,
		)
		return err
	})
	if err != nil {
		logger.Error("journal: record order #%d: %v", ord.ID, err)
	}
}
