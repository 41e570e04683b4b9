package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix scopes environment overrides, e.g. THERMOWATCH_MQTT_BROKER.
const envPrefix = "THERMOWATCH"

type Config struct {
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Threshold ThresholdConfig `mapstructure:"threshold"`
	Readings  ReadingsConfig  `mapstructure:"readings"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey  string        `mapstructure:"signing_key"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	DefaultRole string        `mapstructure:"default_role"` // role given to new accounts

	// Operators lists usernames that are given the operator role when they
	// sign up. Everyone else gets DefaultRole.
	Operators []string `mapstructure:"operators"`
}

type MQTTConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Broker         string        `mapstructure:"broker"`
	ClientID       string        `mapstructure:"client_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Topic          string        `mapstructure:"topic"`
	QoS            byte          `mapstructure:"qos"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	KeepAlive      time.Duration `mapstructure:"keep_alive"`
	Backoff        BackoffConfig `mapstructure:"backoff"`
}

type BackoffConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"`
	MaxInterval time.Duration `mapstructure:"max_interval"`
	NoJitter    bool          `mapstructure:"no_jitter"`
}

type ThresholdConfig struct {
	// Default is used as the current threshold while none has been recorded.
	// Nil means readings are suppressed until an operator configures one.
	Default *float64 `mapstructure:"default"`
}

type ReadingsConfig struct {
	PageSize    int `mapstructure:"page_size"`
	MaxPageSize int `mapstructure:"max_page_size"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"` // empty disables the cache
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type SimulatorConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Tick      time.Duration `mapstructure:"tick"`
	AmbientC  float64       `mapstructure:"ambient_c"`
	PeakC     float64       `mapstructure:"peak_c"`
	NoiseC    float64       `mapstructure:"noise_c"`
	ClientID  string        `mapstructure:"client_id"`
	SpikeEach int           `mapstructure:"spike_each"` // ticks between heat spikes
}

// envOnlyKeys have no default but may still be set from the environment.
var envOnlyKeys = []string{
	"auth.signing_key",
	"threshold.default",
	"mqtt.username",
	"mqtt.password",
	"redis.addr",
	"redis.password",
	"redis.db",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.path", "thermowatch.db")

	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.default_role", "viewer")
	v.SetDefault("auth.operators", []string{})

	v.SetDefault("mqtt.enabled", true)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "thermowatch")
	v.SetDefault("mqtt.topic", "sensors/temperature")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout", 10*time.Second)
	v.SetDefault("mqtt.keep_alive", 30*time.Second)
	v.SetDefault("mqtt.backoff.min_interval", 500*time.Millisecond)
	v.SetDefault("mqtt.backoff.max_interval", 30*time.Second)

	v.SetDefault("readings.page_size", 10)
	v.SetDefault("readings.max_page_size", 100)

	v.SetDefault("redis.key", "thermowatch:latest")
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("simulator.tick", time.Second)
	v.SetDefault("simulator.ambient_c", 25.0)
	v.SetDefault("simulator.peak_c", 40.0)
	v.SetDefault("simulator.noise_c", 0.3)
	v.SetDefault("simulator.client_id", "thermowatch-sim")
	v.SetDefault("simulator.spike_each", 30)
}

// Load reads config.yml from dir (and "."), then applies THERMOWATCH_* env overrides.
// A missing file is fine; defaults and env still apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows about
	for _, key := range envOnlyKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("auth.signing_key must be set")
	}
	if c.MQTT.Enabled && strings.TrimSpace(c.MQTT.Topic) == "" {
		return errors.New("mqtt.topic must be set when mqtt is enabled")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.Readings.PageSize <= 0 || c.Readings.MaxPageSize < c.Readings.PageSize {
		return fmt.Errorf("invalid readings paging: page_size=%d max_page_size=%d",
			c.Readings.PageSize, c.Readings.MaxPageSize)
	}
	return nil
}
