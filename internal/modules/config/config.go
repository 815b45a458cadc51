package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	envPrefix         = "ENGINE"
)

// GeneratorConfig — параметры генераторов и их веса в агрегации.
type GeneratorConfig struct {
	// moving-average crossover
	MAFast      int     `yaml:"ma_fast"`
	MASlow      int     `yaml:"ma_slow"`
	ATRLookback int     `yaml:"atr_lookback"`
	MAWeight    float64 `yaml:"ma_weight"`

	// relative-strength oscillator
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIWeight     float64 `yaml:"rsi_weight"`
}

// RiskConfig — весь риск-бюджет в одном месте, никаких скрытых констант.
type RiskConfig struct {
	PortfolioValue   float64 `yaml:"portfolio_value"`
	RiskPerTrade     float64 `yaml:"risk_per_trade"`     // доля депозита на сделку, (0,1]
	MaxPositionValue float64 `yaml:"max_position_value"` // кап стоимости позиции
	MinConfidence    float64 `yaml:"min_confidence"`     // например 0.3
	MinRiskReward    float64 `yaml:"min_risk_reward"`    // например 1.5
}

type FeedConfig struct {
	URL         string        `yaml:"url"`
	Instruments []string      `yaml:"instruments"`
	Timeframe   string        `yaml:"timeframe"`
	PingEvery   time.Duration `yaml:"ping_every"`
}

// Config ...
type Config struct {
	Service struct {
		Name     string `yaml:"name"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"service"`

	Engine struct {
		BufferCapacity int `yaml:"buffer_capacity"`
	} `yaml:"engine"`

	Generators GeneratorConfig `yaml:"generators"`
	Risk       RiskConfig      `yaml:"risk"`
	Feed       FeedConfig      `yaml:"feed"`

	DB string `yaml:"db_dsn"` // пусто = журнал выключен

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`
}

func NewConfig() (*Config, error) {
	config := defaults()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err == nil {
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, errors.Wrap(err, "decode config file")
		}
	}

	applyEnv(config)
	return config, nil
}

func defaults() *Config {
	c := &Config{}
	c.Service.Name = "signal_engine"
	c.Service.LogLevel = "info"

	c.Engine.BufferCapacity = 500

	c.Generators = GeneratorConfig{
		MAFast:        10,
		MASlow:        30,
		ATRLookback:   14,
		MAWeight:      1.0,
		RSIPeriod:     14,
		RSIOverbought: 70,
		RSIOversold:   30,
		RSIWeight:     1.0,
	}

	c.Risk = RiskConfig{
		PortfolioValue:   100_000,
		RiskPerTrade:     0.02,
		MaxPositionValue: 10_000,
		MinConfidence:    0.3,
		MinRiskReward:    1.5,
	}

	c.Feed = FeedConfig{
		URL:       "wss://ws.okx.com:8443/ws/v5/business",
		Timeframe: "1m",
		PingEvery: 20 * time.Second,
	}
	return c
}

// applyEnv — переопределения через ENGINE_* (риск и секреты обычно
// задаются окружением, не файлом).
func applyEnv(c *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if v.IsSet("portfolio_value") {
		c.Risk.PortfolioValue = v.GetFloat64("portfolio_value")
	}
	if v.IsSet("risk_per_trade") {
		c.Risk.RiskPerTrade = v.GetFloat64("risk_per_trade")
	}
	if v.IsSet("max_position_value") {
		c.Risk.MaxPositionValue = v.GetFloat64("max_position_value")
	}
	if v.IsSet("db_dsn") {
		c.DB = v.GetString("db_dsn")
	}
	if v.IsSet("telegram_token") {
		c.Telegram.Token = v.GetString("telegram_token")
	}
	if v.IsSet("telegram_chat_id") {
		c.Telegram.ChatID = v.GetInt64("telegram_chat_id")
	}
	if v.IsSet("log_level") {
		c.Service.LogLevel = v.GetString("log_level")
	}
}
