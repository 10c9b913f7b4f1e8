package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	Shopify struct {
		Store       string // поддомен магазина, например my-store.myshopify.com
		AccessToken string
		APIVersion  string
		Timeout     time.Duration
	}

	Shopee struct {
		PartnerID    int64
		PartnerKey   string
		Host         string // https://partner.shopeemobile.com
		RedirectURL  string // URL нашего callback для OAuth
		Timeout      time.Duration
		MediaTimeout time.Duration // отдельный таймаут для загрузки изображений
	}

	Sync struct {
		ExchangeRate         float64 // курс JPY -> TWD
		MarkupRate           float64 // торговая наценка
		CategoryID           int64   // категория Shopee по умолчанию
		LogisticIDs          []int64 // каналы доставки по умолчанию
		Limit                int     // максимум товаров на коллекцию, 0 - без ограничения
		PreOrder             bool
		DaysToShip           int
		InterCollectionDelay time.Duration // пауза между коллекциями при полной синхронизации
	}

	Postgres struct {
		Enabled  bool
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Enabled  bool
		Host     string
		Port     int
		Password string
		DB       int
	}

	Kafka struct {
		Enabled bool
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	}

	Metrics struct {
		Enabled  bool
		Endpoint string
		Port     int `mapstructure:"port"`
	}

	Security struct {
		AuthEnabled      bool
		JWTSecret        string
		JWTExpirationMin time.Duration
		CORSAllowOrigins []string
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	var cfg Config

	// Настройка Viper
	viper.SetConfigName(configFile)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../config")
	viper.AddConfigPath("../../config")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Чтение конфигурационного файла
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	// Установка значений по умолчанию
	setDefaults()

	// Привязка переменных окружения
	bindEnvVariables()

	// Чтение конфигурации в структуру
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	// Получаем окружение
	cfg.ENV = viper.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	return &cfg, nil
}

// Validate проверяет обязательные учётные данные внешних площадок
func (c *Config) Validate() error {
	if c.Shopify.Store == "" {
		return fmt.Errorf("не задан SHOPIFY_STORE")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("не задан SHOPIFY_ACCESS_TOKEN")
	}
	if c.Shopee.PartnerID == 0 {
		return fmt.Errorf("не задан SHOPEE_PARTNER_ID")
	}
	if c.Shopee.PartnerKey == "" {
		return fmt.Errorf("не задан SHOPEE_PARTNER_KEY")
	}
	if c.Security.AuthEnabled && c.Security.JWTSecret == "" {
		return fmt.Errorf("включена авторизация, но не задан JWT_SECRET")
	}
	return nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults() {
	// Основные настройки
	viper.SetDefault("appName", "gotoshopee")
	viper.SetDefault("version", "1.0.0")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("env", "development")

	// Настройки сервера
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", "10s")
	viper.SetDefault("server.writeTimeout", "120s")
	viper.SetDefault("server.shutdownTimeout", "5s")

	// Настройки Shopify
	viper.SetDefault("shopify.apiVersion", "2024-01")
	viper.SetDefault("shopify.timeout", "30s")

	// Настройки Shopee
	viper.SetDefault("shopee.host", "https://partner.shopeemobile.com")
	viper.SetDefault("shopee.timeout", "30s")
	viper.SetDefault("shopee.mediaTimeout", "60s")

	// Настройки синхронизации
	viper.SetDefault("sync.exchangeRate", 0.21)
	viper.SetDefault("sync.markupRate", 1.05)
	viper.SetDefault("sync.categoryID", 100656)
	viper.SetDefault("sync.logisticIDs", []int64{70022})
	viper.SetDefault("sync.limit", 0)
	viper.SetDefault("sync.preOrder", false)
	viper.SetDefault("sync.daysToShip", 2)
	viper.SetDefault("sync.interCollectionDelay", "1s")

	// Настройки Postgres
	viper.SetDefault("postgres.enabled", false)
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.dbname", "gotoshopee")
	viper.SetDefault("postgres.sslmode", "disable")
	viper.SetDefault("postgres.timeout", "5s")
	viper.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Настройки Kafka
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.groupID", "gotoshopee")

	// Настройки метрик
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.endpoint", "/metrics")
	viper.SetDefault("metrics.port", 9090)

	// Настройки безопасности
	viper.SetDefault("security.authEnabled", false)
	viper.SetDefault("security.jwtSecret", "")
	viper.SetDefault("security.jwtExpirationMin", "60m")
	viper.SetDefault("security.corsAllowOrigins", []string{"*"})
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables() {
	// Основные настройки
	viper.BindEnv("appName", "APP_NAME")
	viper.BindEnv("version", "APP_VERSION")
	viper.BindEnv("logLevel", "LOG_LEVEL")
	viper.BindEnv("env", "APP_ENV")

	// Настройки сервера
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Настройки Shopify
	viper.BindEnv("shopify.store", "SHOPIFY_STORE")
	viper.BindEnv("shopify.accessToken", "SHOPIFY_ACCESS_TOKEN")
	viper.BindEnv("shopify.apiVersion", "SHOPIFY_API_VERSION")
	viper.BindEnv("shopify.timeout", "SHOPIFY_TIMEOUT")

	// Настройки Shopee
	viper.BindEnv("shopee.partnerID", "SHOPEE_PARTNER_ID")
	viper.BindEnv("shopee.partnerKey", "SHOPEE_PARTNER_KEY")
	viper.BindEnv("shopee.host", "SHOPEE_HOST")
	viper.BindEnv("shopee.redirectURL", "SHOPEE_REDIRECT_URL")
	viper.BindEnv("shopee.timeout", "SHOPEE_TIMEOUT")
	viper.BindEnv("shopee.mediaTimeout", "SHOPEE_MEDIA_TIMEOUT")

	// Настройки синхронизации
	viper.BindEnv("sync.exchangeRate", "SYNC_EXCHANGE_RATE")
	viper.BindEnv("sync.markupRate", "SYNC_MARKUP_RATE")
	viper.BindEnv("sync.categoryID", "SYNC_CATEGORY_ID")
	viper.BindEnv("sync.logisticIDs", "SYNC_LOGISTIC_IDS")
	viper.BindEnv("sync.limit", "SYNC_LIMIT")
	viper.BindEnv("sync.preOrder", "SYNC_PRE_ORDER")
	viper.BindEnv("sync.daysToShip", "SYNC_DAYS_TO_SHIP")
	viper.BindEnv("sync.interCollectionDelay", "SYNC_INTER_COLLECTION_DELAY")

	// Настройки Postgres
	viper.BindEnv("postgres.enabled", "POSTGRES_ENABLED")
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.dbname", "POSTGRES_DBNAME")
	viper.BindEnv("postgres.sslmode", "POSTGRES_SSLMODE")
	viper.BindEnv("postgres.timeout", "POSTGRES_TIMEOUT")
	viper.BindEnv("postgres.poolSize", "POSTGRES_POOL_SIZE")

	// Настройки Redis
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	// Настройки Kafka
	viper.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("kafka.groupID", "KAFKA_GROUP_ID")

	// Настройки метрик
	viper.BindEnv("metrics.enabled", "METRICS_ENABLED")
	viper.BindEnv("metrics.endpoint", "METRICS_ENDPOINT")
	viper.BindEnv("metrics.port", "METRICS_PORT")

	// Настройки безопасности
	viper.BindEnv("security.authEnabled", "AUTH_ENABLED")
	viper.BindEnv("security.jwtSecret", "JWT_SECRET")
	viper.BindEnv("security.jwtExpirationMin", "JWT_EXPIRATION_MIN")
	viper.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")
}
