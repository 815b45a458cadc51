package models

import "time"

// Position — позиция по инструменту. Quantity со знаком: >0 long, <0 short.
// UnrealizedPnL пересчитывается только по запросу (UpdatePnL), не автоматически.
type Position struct {
	Instrument    string
	Quantity      float64
	AvgEntry      float64 // volume-weighted
	UnrealizedPnL float64
	Updated       time.Time
}
