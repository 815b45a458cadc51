package service

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"signal_engine/internal/models"
	"signal_engine/internal/modules/config"
	healthsvc "signal_engine/internal/modules/health/service"
	"signal_engine/pkg/logger"
)

// OutCandle — закрытая свеча, которую фид отдаёт движку.
type OutCandle struct {
	Instrument string
	Candle     models.Candle
}

// Client — WebSocket-клиент маркет-даты (OKX-совместимый протокол свечей).
// Подсистема принятия решений его не знает: он только пушит бары в OnCandle.
type Client struct {
	cfg      config.FeedConfig
	wsDialer *websocket.Dialer
	state    *healthsvc.State
	redial   time.Duration // пауза между переподключениями
}

func NewClient(cfg *config.Config, state *healthsvc.State) *Client {
	return &Client{
		cfg:      cfg.Feed,
		wsDialer: &websocket.Dialer{},
		state:    state,
		redial:   time.Second,
	}
}

// Start стримит закрытые свечи watchlist-а в out до отмены контекста.
func (c *Client) Start(ctx context.Context, out chan<- OutCandle) {
	if len(c.cfg.Instruments) == 0 {
		logger.Error("feed: empty instrument watchlist, streamer not started")
		return
	}
	go c.run(ctx, out)
}

func (c *Client) run(ctx context.Context, out chan<- OutCandle) {
	channel := "candle" + c.cfg.Timeframe // "1m" -> "candle1m"
	tfDur := timeframeToDuration(c.cfg.Timeframe)

	args := make([]map[string]string, 0, len(c.cfg.Instruments))
	for _, id := range c.cfg.Instruments {
		args = append(args, map[string]string{
			"channel": channel,
			"instId":  id,
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("feed: connect %s, %d instruments", channel, len(args))
		conn, _, err := c.wsDialer.Dial(c.cfg.URL, nil)
		if err != nil {
			logger.Error("feed: dial %s: %v", c.cfg.URL, err)
			time.Sleep(c.redial)
			continue
		}

		sub := map[string]any{
			"op":   "subscribe",
			"args": args,
		}
		if err := conn.WriteJSON(sub); err != nil {
			logger.Error("feed: subscribe %s: %v", channel, err)
			_ = conn.Close()
			time.Sleep(c.redial)
			continue
		}
		if c.state != nil {
			c.state.SetFeedConnected(true)
		}

		// keepalive ping, иначе биржа рвёт соединение.
		// stopPing закрывается в run после readLoop: пингер живёт строго
		// в рамках одного соединения и не переживает реконнект
		stopPing := make(chan struct{})
		go func() {
			every := c.cfg.PingEvery
			if every <= 0 {
				every = 20 * time.Second
			}
			t := time.NewTicker(every)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteJSON(map[string]string{"op": "ping"})
				}
			}
		}()

		c.readLoop(ctx, conn, channel, tfDur, out)
		close(stopPing)
		if c.state != nil {
			c.state.SetFeedConnected(false)
		}
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(c.redial) // реконнект без тугого цикла
		}
	}
}

func (c *Client) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	channel string,
	tfDur time.Duration,
	out chan<- OutCandle,
) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Error("feed: read %s: %v", channel, err)
			return
		}

		var frame struct {
			Arg struct {
				Channel string `json:"channel"`
				InstID  string `json:"instId"`
			} `json:"arg"`
			Data [][]string `json:"data"`
		}
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Arg.Channel != channel || len(frame.Data) == 0 {
			continue
		}

		for _, row := range frame.Data {
			candle, ok := parseCandleRow(row, tfDur)
			if !ok {
				continue
			}
			select {
			case out <- OutCandle{Instrument: frame.Arg.InstID, Candle: candle}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// parseCandleRow разбирает строку вида
// [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm]; незакрытые свечи
// (confirm != "1") пропускаются.
func parseCandleRow(row []string, tfDur time.Duration) (models.Candle, bool) {
	if len(row) < 6 {
		return models.Candle{}, false
	}
	if row[len(row)-1] != "1" {
		return models.Candle{}, false
	}

	tsMs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, false
	}
	start := time.UnixMilli(tsMs)
	end := start
	if tfDur > 0 {
		end = start.Add(tfDur)
	}

	open, err1 := strconv.ParseFloat(row[1], 64)
	high, err2 := strconv.ParseFloat(row[2], 64)
	low, err3 := strconv.ParseFloat(row[3], 64)
	closep, err4 := strconv.ParseFloat(row[4], 64)
	volume, err5 := strconv.ParseFloat(row[5], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return models.Candle{}, false
	}
	if closep <= 0 {
		return models.Candle{}, false
	}

	return models.Candle{
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closep,
		Volume: volume,
		Start:  start,
		End:    end,
	}, true
}

func timeframeToDuration(tf string) time.Duration {
	switch tf {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h", "1H":
		return time.Hour
	default:
		return 0
	}
}
