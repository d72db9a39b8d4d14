// Package config предоставляет структуры и функции для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	API                     `yaml:"api"`
	RedisConnection         `yaml:"redis_connection"`
	ObjectStorage           `yaml:"object_storage"`
	RabbitMQ                `yaml:"rabbitmq"`
	GRPCHealth              `yaml:"grpc_health"`
	JWTToken                `yaml:"jwttoken"`
	Admin                   `yaml:"admin"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// API настройки публичного API лицензий
type API struct {
	// PublicURL: внешний адрес сервиса, из него строится package_url
	PublicURL string `yaml:"public_url" env:"API_PUBLIC_URL" env-required:"true"`
	// CallTimeout ограничивает каждый вызов каталога, хранилища лицензий и объектного хранилища
	CallTimeout time.Duration `yaml:"call_timeout" env-default:"3s"`
}

// RedisConnection структура для настройки подключения к redis, где лежат настройки сервиса
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// ObjectStorage настройки S3-совместимого хранилища дистрибутивов.
// Ключи доступа хранятся не здесь, а в хранилище настроек.
type ObjectStorage struct {
	Region       string `yaml:"region" env-default:"us-east-1"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// RabbitMQ настройки публикации событий о выданных загрузках.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"license-manager"`
	RoutingKey string        `yaml:"routing_key" env-default:"download.granted"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
	// QueueSize ёмкость очереди событий; при переполнении событие отбрасывается
	QueueSize      int           `yaml:"queue_size" env-default:"1024"`
	PublishTimeout time.Duration `yaml:"publish_timeout" env-default:"5s"`
}

// GRPCHealth настройки gRPC health-сервера
type GRPCHealth struct {
	AddressGRPC   string        `yaml:"address" env-default:":9090"`
	ProbeInterval time.Duration `yaml:"probe_interval" env-default:"10s"`
}

// JWTToken структура для работы с jwt-токеном администратора
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// Admin учетные данные администратора; пароль хранится только в виде bcrypt-хэша
type Admin struct {
	Username     string `yaml:"username" env-default:"admin"`
	PasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
}

// Load читает конфиг из файла по пути configPath и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"API:\n"+
			"  PublicURL: %s\n"+
			"  CallTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"ObjectStorage:\n"+
			"  Region: %s\n"+
			"  Endpoint: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"GRPCHealth:\n"+
			"  Address: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Admin:\n"+
			"  Username: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.PublicURL,
		c.CallTimeout,
		c.AddressRedis,
		mask(c.Password),
		c.DB,
		c.Region,
		c.Endpoint,
		mask(c.URL),
		c.Exchange,
		c.AddressGRPC,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		c.Username,
	)
}
