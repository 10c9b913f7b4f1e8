package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omishoninjp-sys/gotoshopee/config"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/cache"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/logger"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/messaging"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/shopee"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/shopify"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/storage"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/tokenstore"
	"github.com/omishoninjp-sys/gotoshopee/internal/api"
	"github.com/omishoninjp-sys/gotoshopee/internal/api/handlers"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/services"
	"github.com/omishoninjp-sys/gotoshopee/internal/security"
	"github.com/omishoninjp-sys/gotoshopee/internal/utils"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
	"github.com/omishoninjp-sys/gotoshopee/pkg/tx"
)

// @title GoToShopee Bridge API
// @version 1.0
// @description Сервис переноса каталога Shopify в магазин Shopee
// @BasePath /
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Некорректная конфигурация", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	// Кэш опционален: без Redis предпросмотр не кэшируется,
	// а токены Shopee живут в памяти процесса
	var cacheClient interfaces.CachePort
	if cfg.Redis.Enabled {
		cacheClient, err = cache.NewRedisCache(
			ctx,
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		defer cacheClient.Close()
		log.Info("Кэш инициализирован")
	}

	var tokens interfaces.TokenRepositoryPort
	if cacheClient != nil {
		tokens = tokenstore.NewCacheTokenRepository(cacheClient)
	} else {
		tokens = tokenstore.NewMemoryTokenRepository()
		log.Warn("Токены Shopee хранятся в памяти, перезапуск потребует повторной авторизации")
	}

	// История запусков опциональна и живет в PostgreSQL
	var runStore services.SyncRunStorePort
	if cfg.Postgres.Enabled {
		connStr, err := utils.PostgresDSN(utils.DSNParams{
			Host:           cfg.Postgres.Host,
			Port:           cfg.Postgres.Port,
			User:           cfg.Postgres.User,
			Password:       cfg.Postgres.Password,
			Database:       cfg.Postgres.DBName,
			SSLMode:        cfg.Postgres.SSLMode,
			PoolSize:       cfg.Postgres.PoolSize,
			ConnectTimeout: cfg.Postgres.Timeout,
		})
		if err != nil {
			log.Fatal("Ошибка формирования строки подключения", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			log.Fatal("Ошибка инициализации пула PostgreSQL", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		txManager := tx.NewTxManager(pool, log)
		runStorage := storage.NewSyncRunStorage(pool, txManager, log)
		defer runStorage.Close()

		checkCtx, checkCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := checkStorageConnection(checkCtx, runStorage); err != nil {
			checkCancel()
			log.Fatal("Ошибка подключения к PostgreSQL", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		checkCancel()

		if err := runStorage.EnsureSchema(ctx); err != nil {
			log.Fatal("Ошибка миграции схемы", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		runStore = runStorage
		log.Info("Хранилище истории запусков инициализировано")
	}

	// Kafka опциональна: без брокера события о завершении не публикуются,
	// а асинхронный запуск через /api/v1/sync/run?async=true недоступен
	var broker interfaces.MessagingPort
	if cfg.Kafka.Enabled {
		broker, err = messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log)
		if err != nil {
			log.Fatal("Ошибка инициализации Kafka", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		defer broker.Close()
		log.Info("Система обмена сообщениями инициализирована")
	}

	shopifyClient := shopify.NewClient(
		cfg.Shopify.Store,
		cfg.Shopify.AccessToken,
		cfg.Shopify.APIVersion,
		cfg.Shopify.Timeout,
		log,
	)

	shopeeClient := shopee.NewClient(
		cfg.Shopee.PartnerID,
		cfg.Shopee.PartnerKey,
		cfg.Shopee.Host,
		cfg.Shopee.Timeout,
		cfg.Shopee.MediaTimeout,
		tokens,
		log,
	)

	syncService := services.NewSyncService(
		shopifyClient,
		shopeeClient,
		tokens,
		runStore,
		cacheClient,
		broker,
		log,
		services.SyncDefaults{
			CategoryID:           cfg.Sync.CategoryID,
			LogisticIDs:          cfg.Sync.LogisticIDs,
			ExchangeRate:         cfg.Sync.ExchangeRate,
			MarkupRate:           cfg.Sync.MarkupRate,
			Limit:                cfg.Sync.Limit,
			PreOrder:             cfg.Sync.PreOrder,
			DaysToShip:           cfg.Sync.DaysToShip,
			InterCollectionDelay: cfg.Sync.InterCollectionDelay,
		},
	)
	log.Info("Сервис синхронизации инициализирован")

	var jwtManager *security.JWTManager
	if cfg.Security.AuthEnabled {
		jwtManager, err = security.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.JWTExpirationMin, cfg.AppName)
		if err != nil {
			log.Fatal("Ошибка инициализации JWT", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	router := api.SetupRouter(api.RouterDeps{
		Sync:           handlers.NewSyncHandler(syncService, broker, log),
		Auth:           handlers.NewAuthHandler(shopeeClient, tokens, cfg.Shopee.RedirectURL, log),
		Catalog:        handlers.NewCatalogHandler(shopifyClient, shopeeClient, log),
		Logger:         log,
		JWT:            jwtManager,
		CORSOrigins:    cfg.Security.CORSAllowOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}

// checkStorageConnection проверяет доступность хранилища, открывая
// и сразу откатывая транзакцию
func checkStorageConnection(ctx context.Context, store interfaces.StoragePort) error {
	transaction, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}
	return transaction.Rollback(ctx)
}
