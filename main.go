package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Kariqs/amexan-storefront/cache"
	"github.com/Kariqs/amexan-storefront/controllers"
	"github.com/Kariqs/amexan-storefront/events"
	"github.com/Kariqs/amexan-storefront/initializers"
	"github.com/Kariqs/amexan-storefront/notifications"
	"github.com/Kariqs/amexan-storefront/payments"
	"github.com/Kariqs/amexan-storefront/routes"
	"github.com/Kariqs/amexan-storefront/services"
	"github.com/Kariqs/amexan-storefront/storage"
	"github.com/Kariqs/amexan-storefront/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := initializers.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := initializers.NewLogger(cfg)
	ctx := context.Background()

	db, err := initializers.ConnectToDB(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := initializers.SyncDatabase(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var cartCache cache.CartCache = cache.NoopCache{}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, cart cache disabled", "error", err)
		} else {
			defer client.Close()
			cartCache = cache.NewRedisCache(client)
		}
	}

	var publisher events.Publisher = events.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	}

	uploader, err := storage.NewS3Uploader(ctx, cfg.S3Bucket)
	if err != nil {
		logger.Error("failed to configure AWS", "error", err)
		os.Exit(1)
	}

	dispatcher := notifications.NewDispatcher(newMailer(cfg, logger), notifications.Config{
		AppName:     cfg.AppName,
		SenderEmail: cfg.SenderEmail,
		FrontendURL: cfg.FrontendURL,
	})
	paypal := payments.NewPayPalClient(payments.PayPalConfig{
		BaseURL:  cfg.PayPalAPIURL,
		ClientID: cfg.PayPalClientID,
		Secret:   cfg.PayPalSecret,
		Currency: cfg.PayPalCurrency,
		Timeout:  cfg.PayPalTimeout,
	})

	pricing := services.PricingRule{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFee:           cfg.ShippingFee,
		TaxRate:               cfg.TaxRate,
	}
	carts := services.NewCartService(db, cartCache, pricing, logger)
	products := services.NewProductService(db)
	auth := services.NewAuthService(db, carts, cfg.JWTSecret, cfg.JWTTTL, logger)
	orders := services.NewOrderService(db, carts, paypal, dispatcher, publisher, services.OrderConfig{
		NotifyRecipients:    cfg.OrderNotifyRecipients,
		StockPolicy:         services.StockPolicy(cfg.StockPolicy),
		NotificationTimeout: cfg.NotificationTimeout,
		EventTimeout:        cfg.EventTimeout,
	}, logger)

	authz, err := services.NewAuthorizer()
	if err != nil {
		logger.Error("failed to initialize authorization", "error", err)
		os.Exit(1)
	}

	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.Register(server, routes.Controllers{
		Auth:    controllers.NewAuthController(auth),
		User:    controllers.NewUserController(auth),
		Product: controllers.NewProductController(products, uploader),
		Cart:    controllers.NewCartController(carts),
		Order:   controllers.NewOrderController(orders),
	}, auth, authz, strings.HasPrefix(cfg.FrontendURL, "https://"))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("starting storefront api", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	orders.Wait()
}

func newMailer(cfg *initializers.Config, logger *slog.Logger) utils.Mailer {
	switch cfg.MailTransport {
	case "resend":
		return utils.NewResendMailer(cfg.ResendAPIURL, cfg.ResendAPIKey, cfg.NotificationTimeout)
	case "log":
		return utils.LogMailer{Logger: logger}
	default:
		return utils.NewSMTPMailer(utils.SMTPConfig{
			Address:  cfg.SMTPAddress,
			Host:     cfg.SMTPHost,
			Username: cfg.SenderEmail,
			Password: cfg.SMTPPassword,
		})
	}
}
