package models

import "time"

type OrderSide string

const (
	OrderBuy  OrderSide = "BUY"
	OrderSell OrderSide = "SELL"
)

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderFilled   OrderStatus = "FILLED"
	OrderCanceled OrderStatus = "CANCELED"
)

// Order создаётся только риск-менеджером; ID — монотонный счётчик.
type Order struct {
	ID         int64
	Instrument string
	Side       OrderSide
	Quantity   float64
	Price      float64
	StopLoss   float64 // 0 = не задан
	TakeProfit float64 // 0 = не задан
	Status     OrderStatus
	CreatedAt  time.Time
}
