// Ininicializing common application configuration
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Form   FormConfig   `mapstructure:"form"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Output OutputConfig `mapstructure:"output"`
}

type ServerConfig struct {
	AppVersion   string        `mapstructure:"app_version"`
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Idle_timeout time.Duration `mapstructure:"idle_timeout"`
	Env          string        `mapstructure:"environment"`
	Mode         string        `mapstructure:"mode"`
	WebDir       string        `mapstructure:"web_dir"`
}

// ClientConfig points at the upstream watermarking server.
type ClientConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Zero means no timeout: the request waits until the transport gives up.
	Timeout time.Duration `mapstructure:"timeout"`
}

type FormConfig struct {
	Debounce      time.Duration `mapstructure:"debounce"`
	MaxImageBytes int64         `mapstructure:"max_image_bytes"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig reads config.yaml from path, or from ./config when path is
// empty. A missing file is not an error: defaults and WATERMARK_* env
// variables still apply.
func LoadConfig(path string) (*viper.Viper, error) {

	viperInstance := viper.New()
	setDefaults(viperInstance)

	if path != "" {
		viperInstance.SetConfigFile(path)
	} else {
		viperInstance.AddConfigPath("./config")
		viperInstance.SetConfigName("config")
		viperInstance.SetConfigType("yaml")
	}

	// server.port -> WATERMARK_SERVER_PORT
	viperInstance.SetEnvPrefix("WATERMARK")
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	err := viperInstance.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return viperInstance, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.web_dir", "./web")

	v.SetDefault("client.base_url", "http://localhost:5000")
	v.SetDefault("client.timeout", 0)

	v.SetDefault("form.debounce", 300*time.Millisecond)
	v.SetDefault("form.max_image_bytes", 20<<20)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9094")
	v.SetDefault("kafka.topic", "watermark-events")
	v.SetDefault("kafka.group_id", "watermark-events-tail")

	v.SetDefault("output.dir", "./output")
}
