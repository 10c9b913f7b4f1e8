package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omishoninjp-sys/gotoshopee/config"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/cache"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/logger"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/messaging"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/shopee"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/shopify"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/storage"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/tokenstore"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/services"
	"github.com/omishoninjp-sys/gotoshopee/internal/utils"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
	"github.com/omishoninjp-sys/gotoshopee/pkg/tx"
)

// Метрики для Prometheus
var (
	commandsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_sync_commands_total",
		Help: "Общее количество обработанных команд синхронизации",
	}, []string{"command", "status"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_sync_command_duration_seconds",
		Help:    "Длительность обработки команд синхронизации",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"command"})

	activeCommands = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_sync_commands",
		Help: "Количество команд синхронизации в обработке",
	})
)

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
	log.Info("Инициализация воркера",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Некорректная конфигурация", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	if !cfg.Kafka.Enabled {
		log.Fatal("Воркер требует включенной Kafka (KAFKA_ENABLED=true)")
	}

	// HTTP сервер для метрик
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
			})

			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			log.Info("Запуск HTTP сервера для метрик",
				interfaces.LogField{Key: "addr", Value: addr})

			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error("Ошибка запуска HTTP сервера для метрик",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}()
	}

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

	// Воркеру нужен общий с API процессом источник токенов,
	// иначе авторизация из API-процесса для него невидима
	var tokens interfaces.TokenRepositoryPort
	if cacheClient != nil {
		tokens = tokenstore.NewCacheTokenRepository(cacheClient)
	} else {
		tokens = tokenstore.NewMemoryTokenRepository()
		log.Warn("Токены Shopee хранятся в памяти воркера, авторизация через API-процесс не будет видна")
	}

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

	broker, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log)
	if err != nil {
		log.Fatal("Ошибка инициализации Kafka", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer broker.Close()
	log.Info("Система обмена сообщениями инициализирована")

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

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	subscribeToSyncCommands(ctx, broker, syncService, log, &wg)

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		cancel()
		wg.Wait()
		close(done)
	}()

	log.Info("Воркер запущен и готов к обработке команд")
	<-done
	log.Info("Воркер корректно завершил работу")
}

// Подписка на команды синхронизации
func subscribeToSyncCommands(ctx context.Context, broker interfaces.MessagingPort,
	syncService *services.SyncService,
	log interfaces.LoggerPort, wg *sync.WaitGroup) {

	commandHandler := func(ctx context.Context, msg interfaces.Message) error {
		startTime := time.Now()
		activeCommands.Inc()
		defer activeCommands.Dec()

		log.InfoWithContext(ctx, "Получена команда синхронизации",
			interfaces.LogField{Key: "topic", Value: msg.Topic},
			interfaces.LogField{Key: "key", Value: msg.Key},
		)

		var command messaging.SyncCommand
		if err := json.Unmarshal(msg.Value, &command); err != nil {
			log.ErrorWithContext(ctx, "Ошибка декодирования команды",
				interfaces.LogField{Key: "error", Value: err.Error()})
			commandsProcessed.WithLabelValues("unknown", "error").Inc()
			return err
		}

		req := models.SyncRequest{
			CollectionID:    command.CollectionID,
			CollectionTitle: command.CollectionTitle,
			CategoryID:      command.CategoryID,
			LogisticIDs:     command.LogisticIDs,
			ExchangeRate:    command.ExchangeRate,
			MarkupRate:      command.MarkupRate,
			Limit:           command.Limit,
		}

		var err error
		switch command.CommandType {
		case messaging.CommandSyncCollection:
			if command.CollectionID == 0 {
				err = fmt.Errorf("команда %s без collection_id", command.CommandType)
				break
			}
			_, err = syncService.SyncCollection(ctx, &req)

		case messaging.CommandSyncAll:
			_, err = syncService.SyncAll(ctx, req)

		default:
			log.WarnWithContext(ctx, "Неизвестный тип команды",
				interfaces.LogField{Key: "command_type", Value: command.CommandType})
			commandsProcessed.WithLabelValues(command.CommandType, "unknown").Inc()
			return nil
		}

		if err != nil {
			log.ErrorWithContext(ctx, "Ошибка обработки команды",
				interfaces.LogField{Key: "command_type", Value: command.CommandType},
				interfaces.LogField{Key: "error", Value: err.Error()})
			commandsProcessed.WithLabelValues(command.CommandType, "error").Inc()
			return err
		}

		duration := time.Since(startTime).Seconds()
		commandDuration.WithLabelValues(command.CommandType).Observe(duration)
		commandsProcessed.WithLabelValues(command.CommandType, "success").Inc()

		log.InfoWithContext(ctx, "Команда успешно обработана",
			interfaces.LogField{Key: "command_type", Value: command.CommandType},
			interfaces.LogField{Key: "duration", Value: duration},
		)

		return nil
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		unsubscribe, err := broker.Subscribe(ctx, messaging.SyncCommandsTopic, commandHandler)
		if err != nil {
			log.Error("Ошибка подписки на команды синхронизации",
				interfaces.LogField{Key: "error", Value: err.Error()})
			return
		}
		defer unsubscribe()

		log.Info("Подписка на команды синхронизации установлена")

		<-ctx.Done()
		log.Info("Отмена подписки на команды синхронизации")
	}()
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
