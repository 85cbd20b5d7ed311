package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aturgenev/skyreserve/config"
	"github.com/aturgenev/skyreserve/internal/cache"
	"github.com/aturgenev/skyreserve/internal/console"
	"github.com/aturgenev/skyreserve/internal/kafka"
	"github.com/aturgenev/skyreserve/internal/logger"
	"github.com/aturgenev/skyreserve/internal/payment"
	"github.com/aturgenev/skyreserve/internal/repository"
	"github.com/aturgenev/skyreserve/internal/service/auth"
	"github.com/aturgenev/skyreserve/internal/service/customers"
	"github.com/aturgenev/skyreserve/internal/service/flights"
	"github.com/aturgenev/skyreserve/internal/service/reservation"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.InitLoggers(cfg.Logging.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flightRepo := repository.NewFlightRepository()
	customerRepo := repository.NewCustomerRepository()

	var flightCache flights.Cache
	reservationOpts := []reservation.ReservationServiceOption{}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSeconds)*time.Second)
		flightCache = redisCache
		reservationOpts = append(reservationOpts, reservation.WithCache(redisCache))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		reservationOpts = append(reservationOpts,
			reservation.WithProducer(producer, cfg.Kafka.BookingTopic),
			reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		reservationOpts = append(reservationOpts, reservation.WithAuditLog(repository.NewBookingLog(pool)))
	}

	var gateway payment.Gateway = payment.NewAcceptAllGateway()
	if cfg.Payment.Enabled() {
		gateway = payment.NewRazorpayGateway(cfg.Payment.RazorpayKeyID, cfg.Payment.RazorpayKeySecret)
	}

	admins, err := auth.NewCredentialStore(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Fatalf("seed admin store: %v", err)
	}
	authenticator := auth.NewAuthenticator(
		auth.NewAdminStrategy(admins),
		auth.NewCustomerStrategy(customerRepo),
	)

	scheduler := flights.NewScheduler(time.Now().UnixNano())
	if err := scheduler.Populate(ctx, flightRepo, cfg.Schedule.NumFlights); err != nil {
		log.Fatalf("populate flight schedule: %v", err)
	}

	flightService := flights.NewFlightService(flightRepo, flightCache, flights.WithCustomerLedger(customerRepo))
	customerService := customers.NewCustomerService(customerRepo, time.Now().UnixNano())
	reservationService := reservation.NewReservationService(flightRepo, customerRepo, gateway, reservationOpts...)

	ui := console.New(authenticator, admins, flightService, customerService, reservationService, os.Stdin, os.Stdout)
	if err := ui.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("console error: %v", err)
	}
}
