package service

import "signal_engine/internal/models"

// Generator — один независимый аналитический метод.
//
// Generate детерминирован: одна и та же история всегда даёт один и тот же
// сигнал (кроме поля CreatedAt). Недостаточно истории — возвращаем nil,
// это не ошибка. Hold генератор не эмитит никогда: только BUY/SELL мнения
// участвуют в агрегации.
type Generator interface {
	Generate(history []models.Candle, instrument string) *models.TradingSignal
	Name() string
}
