package config

import (
	"flag"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EventsDriverNone  = "none"
	EventsDriverKafka = "kafka"
	EventsDriverRedis = "redis"
)

type Server struct {
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"5555"`
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`
	Timeout         time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Metrics struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"localhost"`
	Port int    `yaml:"port" env:"METRICS_PORT" env-default:"9090"`
}

type Postgres struct {
	Host           string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password       string `yaml:"password" env:"DB_PASSWORD"`
	DBName         string `yaml:"dbname" env:"DB_NAME" env-default:"chatterbox"`
	SSLMode        string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxConns       int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	SkipMigrations bool   `yaml:"skip_migrations" env:"DB_SKIP_MIGRATIONS"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

type Events struct {
	Driver string `yaml:"driver" env:"EVENTS_DRIVER" env-default:"none"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"message_events"`
}

type Redis struct {
	Host         string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port         int           `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Channel      string        `yaml:"channel" env:"REDIS_CHANNEL" env-default:"message_events"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize     int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" env-default:"2"`
}

type Config struct {
	Env      string   `yaml:"env" env:"ENV" env-default:"local"`
	Server   Server   `yaml:"server"`
	Metrics  Metrics  `yaml:"metrics"`
	Postgres Postgres `yaml:"postgres"`
	CORS     CORS     `yaml:"cors"`
	Events   Events   `yaml:"events"`
	Kafka    Kafka    `yaml:"kafka"`
	Redis    Redis    `yaml:"redis"`
}

func (c *Config) DatabaseDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:     net.JoinHostPort(c.Postgres.Host, strconv.Itoa(c.Postgres.Port)),
		Path:     "/" + c.Postgres.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.Postgres.SSLMode),
	}
	return u.String()
}

func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) MetricsAddr() string {
	return net.JoinHostPort(c.Metrics.Host, strconv.Itoa(c.Metrics.Port))
}

func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

func MustLoadConfig() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is not provided")
	}
	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic("cannot read config: " + err.Error())
	}
	return cfg
}

func LoadPath(configPath string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	switch cfg.Events.Driver {
	case EventsDriverNone, EventsDriverKafka, EventsDriverRedis:
	default:
		return nil, &UnknownDriverError{Driver: cfg.Events.Driver}
	}

	return &cfg, nil
}

type UnknownDriverError struct {
	Driver string
}

func (e *UnknownDriverError) Error() string {
	return "unknown events driver " + strconv.Quote(e.Driver)
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "Path to the config file (e.g. config/local.yaml)")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
