// Package series хранит ограниченную историю свечей по одному инструменту.
package series

import "signal_engine/internal/models"

const DefaultCapacity = 500

// Series — кольцевой буфер закрытых свечей, insertion order == chronological order.
// Не потокобезопасен: пишет только оркестратор.
type Series struct {
	buf  []models.Candle
	head int // индекс самой старой свечи
	size int
}

func New(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{buf: make([]models.Candle, capacity)}
}

// Append O(1); при переполнении вытесняет самую старую свечу.
func (s *Series) Append(c models.Candle) {
	if s.size < len(s.buf) {
		s.buf[(s.head+s.size)%len(s.buf)] = c
		s.size++
		return
	}
	s.buf[s.head] = c
	s.head = (s.head + 1) % len(s.buf)
}

// Snapshot возвращает копию истории от старой к новой; генераторы
// читают только её и не видят последующих мутаций буфера.
func (s *Series) Snapshot() []models.Candle {
	out := make([]models.Candle, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.buf[(s.head+i)%len(s.buf)]
	}
	return out
}

func (s *Series) Len() int { return s.size }

func (s *Series) Cap() int { return len(s.buf) }

func (s *Series) Last() (models.Candle, bool) {
	if s.size == 0 {
		return models.Candle{}, false
	}
	return s.buf[(s.head+s.size-1)%len(s.buf)], true
}
