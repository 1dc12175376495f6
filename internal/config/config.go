package config

import "fmt"

type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Storage  StorageConfig
	Log      LogConfig
}

// ServerConfig covers the local admin API.
type ServerConfig struct {
	Port int
}

type TelegramConfig struct {
	Token       string
	BaseURL     string
	PollTimeout int // long-poll hold in seconds
}

type StorageConfig struct {
	VoiceDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4090,
		},
		Telegram: TelegramConfig{
			BaseURL:     "https://api.telegram.org",
			PollTimeout: 30,
		},
		Storage: StorageConfig{
			VoiceDir: defaultVoiceDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/siddy/config.json, with SIDDY_* environment variables
// overriding backend values. The bot token is a secret and comes from the
// environment only (SIDDY_TELEGRAM_TOKEN, loadable from a .env file).
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Telegram.Token == "" {
		return Config{}, fmt.Errorf("missing required config: Telegram bot token. " +
			"Set it via environment variable SIDDY_TELEGRAM_TOKEN")
	}

	return cfg, nil
}
