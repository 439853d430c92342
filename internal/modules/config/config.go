package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	apiKeyENV         = "LNM_API_KEY"
	apiSecretENV      = "LNM_API_SECRET"
	apiPassphraseENV  = "LNM_API_PASSPHRASE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatIDTelegramENV = "TELEGRAM_CHAT_ID"
	databaseDSN       = "DATABASE_DSN"
)

// Config — статическая часть: креды, адреса, пути. Торговые параметры
// живут отдельно в trading-файле и перечитываются каждым циклом (Watcher).
type Config struct {
	LNMarkets struct {
		Key        string `yaml:"key"`
		Secret     string `yaml:"secret"`
		Passphrase string `yaml:"passphrase"`
		RestURL    string `yaml:"rest_url"` // https://api.lnmarkets.com
		WSURL      string `yaml:"ws_url"`   // wss://api.lnmarkets.com
	} `yaml:"lnmarkets"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	DB string `yaml:"db_dsn"`

	Service struct {
		HealthAddr string `yaml:"health_addr"` // например ":8080"
	} `yaml:"service"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Файл с live-перезагружаемыми торговыми параметрами.
	TradingConfigFile string `yaml:"trading_config_file"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{}
	config.LNMarkets.RestURL = "https://api.lnmarkets.com"
	config.LNMarkets.WSURL = "wss://api.lnmarkets.com"
	config.Service.HealthAddr = ":8080"
	config.TradingConfigFile = "configs/trading.yaml"

	if err = decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if v := os.Getenv(apiKeyENV); v != "" {
		config.LNMarkets.Key = v
	}
	if v := os.Getenv(apiSecretENV); v != "" {
		config.LNMarkets.Secret = v
	}
	if v := os.Getenv(apiPassphraseENV); v != "" {
		config.LNMarkets.Passphrase = v
	}
	if v := os.Getenv(tokenTelegramENV); v != "" {
		config.Telegram.Token = v
	}
	if v := os.Getenv(chatIDTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if v := os.Getenv(databaseDSN); v != "" {
		config.DB = v
	}

	if config.LNMarkets.Key == "" || config.LNMarkets.Secret == "" {
		return nil, fmt.Errorf("lnmarkets api credentials are required")
	}

	return &config, nil
}
