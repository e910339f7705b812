package config

import (
	"github.com/kelseyhightower/envconfig"
	"strings"
)

const defaultPort = "5000"

type Config struct {
	Port         string   `envconfig:"PORT" default:"5000"`
	PostgresDSN  string   `envconfig:"POSTGRES_DSN"` // kosong -> memstore
	RedisAddr    string   `envconfig:"REDIS_ADDR"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"restaurant.order.events"`
	UploadDir    string   `envconfig:"UPLOAD_DIR" default:"uploads"`
	ServiceName  string   `envconfig:"SERVICE_NAME" default:"restaurant-api"`
	LogLevel     string   `envconfig:"LOG_LEVEL" default:"info"`

	NotifierGroup   string `envconfig:"NOTIFIER_GROUP" default:"kitchen-notifier"`
	NotifierWorkers int    `envconfig:"NOTIFIER_WORKERS" default:"4"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	return cfg, nil
}

func (c Config) HTTPAddr() string { return ":" + c.Port }

// compact membuang entri kosong, mis. KAFKA_BROKERS="a:9092, ,b:9092".
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
