package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/cache"
	"github.com/rahulnakum14/ecommerce-api-go/internal/cart"
	"github.com/rahulnakum14/ecommerce-api-go/internal/catalog"
	"github.com/rahulnakum14/ecommerce-api-go/internal/checkout"
	"github.com/rahulnakum14/ecommerce-api-go/internal/consumer"
	"github.com/rahulnakum14/ecommerce-api-go/internal/fulfillment"
	"github.com/rahulnakum14/ecommerce-api-go/internal/httpapi"
	"github.com/rahulnakum14/ecommerce-api-go/internal/payment"
	"github.com/rahulnakum14/ecommerce-api-go/internal/repository"
	"github.com/rahulnakum14/ecommerce-api-go/pkg/metrics"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	CacheTTL        time.Duration
	StripeSecretKey string
	BaseURL         string
	InvoiceDir      string
	KafkaBrokers    []string
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	ttlSeconds, _ := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "3600"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "4000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "shopdb"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CacheTTL:        time.Duration(ttlSeconds) * time.Second,
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:4000/"),
		InvoiceDir:      getEnv("INVOICE_DIR", "invoices"),
		KafkaBrokers:    brokers,
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        smtpPort,
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        getEnv("SMTP_FROM", "orders@example.com"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx := context.Background()
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("uri", cfg.MongoURI).Msg("connected to MongoDB")

	cartRepo := repository.NewMongoCartRepository(mongoDB)
	productRepo := repository.NewMongoProductRepository(mongoDB)
	userRepo := repository.NewMongoUserRepository(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The cache is advisory; a dead redis degrades reads, nothing more.
		log.Warn().Err(err).Msg("redis ping failed, running with a cold cache")
	} else {
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis ping succeeded")
	}

	cacheMetrics := metrics.NewCacheMetrics(prometheus.DefaultRegisterer)
	store := cache.NewRedisStore(redisClient)
	cartCache := cache.NewCartCache(store, cfg.CacheTTL, log, cacheMetrics)
	catalogCache := cache.NewCatalogCache(store, cfg.CacheTTL, log, cacheMetrics)

	cartService := cart.NewService(cartRepo, productRepo, cartCache, log)
	catalogService := catalog.NewService(productRepo, catalogCache, log)

	var provider checkout.Provider
	if stripeProvider := payment.NewStripeProvider(cfg.StripeSecretKey); stripeProvider != nil {
		provider = stripeProvider
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, checkout is disabled")
	}
	checkoutService := checkout.NewService(cartService, productRepo, userRepo, provider, cfg.BaseURL, log)

	mailer := fulfillment.NewSMTPMailer(fulfillment.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	fulfillmentService := fulfillment.NewService(
		userRepo, cartRepo, productRepo,
		fulfillment.NewPDFRenderer(), mailer, cfg.InvoiceDir, log,
	)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if len(cfg.KafkaBrokers) > 0 {
		paymentConsumer := consumer.NewPaymentConsumer(fulfillmentService, log, cfg.KafkaBrokers...)
		defer paymentConsumer.Close()
		go paymentConsumer.Run(consumerCtx)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("payment-success consumer started")
	}

	router := httpapi.NewRouter(httpapi.Services{
		Cart:        cartService,
		Catalog:     catalogService,
		Checkout:    checkoutService,
		Fulfillment: fulfillmentService,
	}, cfg.RequestTimeout, log)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	log.Info().Msg("server stopped")
}
