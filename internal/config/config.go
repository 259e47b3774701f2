package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Binance      BinanceConfig      `yaml:"binance"`
	Exchange     ExchangeConfig     `yaml:"exchange"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Scanner      ScannerConfig      `yaml:"scanner"`
	Notification NotificationConfig `yaml:"notification"`
	Storage      StorageConfig      `yaml:"storage"`
	Server       ServerConfig       `yaml:"server"`
	UI           UIConfig           `yaml:"ui"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// BinanceConfig содержит настройки подключения к Binance
type BinanceConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Testnet   bool   `yaml:"testnet"`
}

// ExchangeConfig настройки получения свечей
type ExchangeConfig struct {
	CandleLimit         int `yaml:"candle_limit"`
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
	MaxRetries          int `yaml:"max_retries"`
	RetryMinMs          int `yaml:"retry_min_ms"`
	RetryMaxMs          int `yaml:"retry_max_ms"`
}

// TimeframeConfig одна строка таблицы таймфреймов.
// Порядок строк важен: по нему связываются веса и анализы.
type TimeframeConfig struct {
	Label    string  `yaml:"label"`
	Interval string  `yaml:"interval"`
	Weight   float64 `yaml:"weight"`
}

// AnalysisConfig содержит настройки аналитических модулей
type AnalysisConfig struct {
	Timeframes         []TimeframeConfig `yaml:"timeframes"`
	StructureLookback  int               `yaml:"structure_lookback"`
	LiquidityLookback  int               `yaml:"liquidity_lookback"`
	ATRPeriod          int               `yaml:"atr_period"`
	VolumeDelta        VolumeDeltaConfig `yaml:"volume_delta"`
	MaxOrderBlocks     int               `yaml:"max_order_blocks"`
	MaxFairValueGaps   int               `yaml:"max_fair_value_gaps"`
	MaxLiquidityLevels int               `yaml:"max_liquidity_levels"`
	BiasThreshold      float64           `yaml:"bias_threshold"`
	ReferenceLabels    []string          `yaml:"reference_timeframes"`
}

// VolumeDeltaConfig настройки анализа дельты объемов
type VolumeDeltaConfig struct {
	Recent int `yaml:"recent"`
	Older  int `yaml:"older"`
}

// ScannerConfig настройки периодического сканирования
type ScannerConfig struct {
	Symbols       []string `yaml:"symbols"`
	Schedule      string   `yaml:"schedule"`
	DailyReset    string   `yaml:"daily_reset"`
	Timezone      string   `yaml:"timezone"`
	WindowStart   string   `yaml:"window_start"`
	WindowEnd     string   `yaml:"window_end"`
	MinConfidence int      `yaml:"min_confidence"`
	Workers       int      `yaml:"workers"`
	SymbolDelayMs int      `yaml:"symbol_delay_ms"`
	Greeting      string   `yaml:"greeting"`
}

// NotificationConfig настройки уведомлений
type NotificationConfig struct {
	Telegram  TelegramConfig `yaml:"telegram"`
	Signature string         `yaml:"signature"`
}

// TelegramConfig настройки Telegram
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// StorageConfig настройки хранения данных
type StorageConfig struct {
	Type         string `yaml:"type"`
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// UIConfig настройки пользовательского интерфейса
type UIConfig struct {
	Enabled     bool `yaml:"enabled"`
	RefreshRate int  `yaml:"refresh_rate_ms"`
}

// LoggingConfig настройки логирования
type LoggingConfig struct {
	Level    string `yaml:"level"`
	File     string `yaml:"file"`
	JSONFile string `yaml:"json_file"`
	Console  bool   `yaml:"console"`
}

// DefaultTimeframes таблица таймфреймов по умолчанию
func DefaultTimeframes() []TimeframeConfig {
	return []TimeframeConfig{
		{Label: "D1", Interval: "1d", Weight: 1.5},
		{Label: "H4", Interval: "4h", Weight: 1.3},
		{Label: "H1", Interval: "1h", Weight: 1.1},
		{Label: "15M", Interval: "15m", Weight: 0.8},
	}
}

// DefaultAnalysis настройки анализа по умолчанию
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Timeframes:         DefaultTimeframes(),
		StructureLookback:  3,
		LiquidityLookback:  2,
		ATRPeriod:          14,
		VolumeDelta:        VolumeDeltaConfig{Recent: 5, Older: 15},
		MaxOrderBlocks:     10,
		MaxFairValueGaps:   8,
		MaxLiquidityLevels: 6,
		BiasThreshold:      0.5,
		ReferenceLabels:    []string{"H1", "H4"},
	}
}

// DefaultSymbols список отслеживаемых монет по умолчанию
func DefaultSymbols() []string {
	return []string{
		"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT", "ADAUSDT", "DOGEUSDT", "TRXUSDT", "LINKUSDT", "MATICUSDT",
		"DOTUSDT", "LTCUSDT", "SHIBUSDT", "AVAXUSDT", "UNIUSDT", "ATOMUSDT", "XMRUSDT", "ETCUSDT", "XLMUSDT", "BCHUSDT",
		"FILUSDT", "APTUSDT", "NEARUSDT", "ARBUSDT", "OPUSDT", "INJUSDT", "RNDRUSDT", "LDOUSDT", "TIAUSDT", "SUIUSDT",
		"SEIUSDT", "PEPEUSDT", "FETUSDT", "AGIXUSDT", "GALAUSDT", "SANDUSDT", "MANAUSDT", "AAVEUSDT", "SNXUSDT", "IMXUSDT",
	}
}

// Default возвращает полную конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			CandleLimit:         300,
			FetchTimeoutSeconds: 15,
			MaxRetries:          2,
			RetryMinMs:          500,
			RetryMaxMs:          5000,
		},
		Analysis: DefaultAnalysis(),
		Scanner: ScannerConfig{
			Symbols:       DefaultSymbols(),
			Schedule:      "@every 2h30m",
			DailyReset:    "0 4 * * *",
			Timezone:      "Asia/Ho_Chi_Minh",
			WindowStart:   "04:00",
			WindowEnd:     "23:30",
			MinConfidence: 60,
			Workers:       4,
			SymbolDelayMs: 1000,
			Greeting:      "Доброе утро! Бот готов к поиску новых сетапов.",
		},
		Storage: StorageConfig{Type: "none"},
		Server:  ServerConfig{Enabled: true, Host: "0.0.0.0", Port: 3000},
		UI:      UIConfig{Enabled: false, RefreshRate: 1000},
		Logging: LoggingConfig{Level: "info", File: "app.log", JSONFile: "app.json.log"},
	}
}

// Load загружает конфигурацию из файла поверх значений по умолчанию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// .env необязателен
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка проверки конфигурации: %w", err)
	}

	return cfg, nil
}

// Parse разбирает YAML поверх значений по умолчанию
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}
	cfg.Analysis.fillDefaults()
	return cfg, nil
}

// applyEnv переопределяет секреты из переменных окружения
func (c *Config) applyEnv() {
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		c.Binance.APISecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notification.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Notification.Telegram.ChatID = v
	}
	if v := os.Getenv("INFLUXDB_TOKEN"); v != "" {
		c.Storage.Token = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// fillDefaults заполняет нулевые значения анализа
func (a *AnalysisConfig) fillDefaults() {
	def := DefaultAnalysis()
	if len(a.Timeframes) == 0 {
		a.Timeframes = def.Timeframes
	}
	if a.StructureLookback <= 0 {
		a.StructureLookback = def.StructureLookback
	}
	if a.LiquidityLookback <= 0 {
		a.LiquidityLookback = def.LiquidityLookback
	}
	if a.ATRPeriod <= 0 {
		a.ATRPeriod = def.ATRPeriod
	}
	if a.VolumeDelta.Recent <= 0 {
		a.VolumeDelta.Recent = def.VolumeDelta.Recent
	}
	if a.VolumeDelta.Older <= 0 {
		a.VolumeDelta.Older = def.VolumeDelta.Older
	}
	if a.MaxOrderBlocks <= 0 {
		a.MaxOrderBlocks = def.MaxOrderBlocks
	}
	if a.MaxFairValueGaps <= 0 {
		a.MaxFairValueGaps = def.MaxFairValueGaps
	}
	if a.MaxLiquidityLevels <= 0 {
		a.MaxLiquidityLevels = def.MaxLiquidityLevels
	}
	if a.BiasThreshold <= 0 {
		a.BiasThreshold = def.BiasThreshold
	}
	if a.ReferenceLabels == nil {
		a.ReferenceLabels = def.ReferenceLabels
	}
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if len(c.Analysis.Timeframes) == 0 {
		return fmt.Errorf("не задана таблица таймфреймов")
	}
	seen := make(map[string]bool, len(c.Analysis.Timeframes))
	for i, tf := range c.Analysis.Timeframes {
		if tf.Label == "" || tf.Interval == "" {
			return fmt.Errorf("таймфрейм #%d: пустая метка или интервал", i)
		}
		if seen[tf.Label] {
			return fmt.Errorf("таймфрейм %s указан дважды", tf.Label)
		}
		seen[tf.Label] = true
		if tf.Weight <= 0 {
			return fmt.Errorf("таймфрейм %s: вес должен быть положительным", tf.Label)
		}
	}

	if c.Exchange.CandleLimit <= 0 {
		return fmt.Errorf("candle_limit должен быть положительным")
	}
	if c.Exchange.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch_timeout_seconds должен быть положительным")
	}
	if c.Scanner.MinConfidence < 0 || c.Scanner.MinConfidence > 100 {
		return fmt.Errorf("min_confidence вне диапазона 0..100: %d", c.Scanner.MinConfidence)
	}
	if c.Scanner.Workers <= 0 {
		return fmt.Errorf("workers должен быть положительным")
	}

	switch c.Storage.Type {
	case "none", "":
	case "influxdb":
		if c.Storage.URL == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("для influxdb нужны url и bucket")
		}
	default:
		return fmt.Errorf("неизвестный тип хранилища: %s", c.Storage.Type)
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("некорректный порт сервера: %d", c.Server.Port)
	}

	return nil
}
