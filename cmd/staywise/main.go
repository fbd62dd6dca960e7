package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"staywise/internal/app/commands"
	bookingapp "staywise/internal/app/handlers/booking"
	calendarapp "staywise/internal/app/handlers/calendar"
	pricingapp "staywise/internal/app/handlers/pricing"
	searchapp "staywise/internal/app/handlers/search"
	"staywise/internal/app/middleware"
	appoutbox "staywise/internal/app/outbox"
	"staywise/internal/app/policies"
	"staywise/internal/app/queries"
	"staywise/internal/app/schedule"
	"staywise/internal/app/uow"
	domainlistings "staywise/internal/domain/listings"
	"staywise/internal/domain/shared/money"
	domaintraveler "staywise/internal/domain/traveler"
	"staywise/internal/infra/broker/kafka"
	"staywise/internal/infra/config"
	mongodb "staywise/internal/infra/db/mongo"
	ginserver "staywise/internal/infra/http/gin"
	"staywise/internal/infra/notify"
	"staywise/internal/infra/obs"
	infraoutbox "staywise/internal/infra/outbox"
	"staywise/internal/infra/payments"
	"staywise/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	for _, run := range app.background {
		run := run
		go func() {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	ready      func() error
	background []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory uow.UoWFactory
		locker     policies.ListingLocker
		box        appoutbox.Outbox
		idStore    middleware.IdempotencyStore
		notifier   policies.Notifier
		ready      func() error
		background []func(context.Context) error
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		uowFactory = mongodb.Factory{
			DB:                 client.DB,
			ListingsRepo:       mongodb.NewListingRepository(client.DB),
			BookingRepo:        mongodb.NewBookingRepository(client.DB),
			BlockedDatesRepo:   mongodb.NewBlockedDateRepository(client.DB),
			PricingHistoryRepo: mongodb.NewPricingHistoryRepository(client.DB),
			ProfilesRepo:       mongodb.NewProfileRepository(client.DB),
		}
		locker = mongodb.NewAdmissionLocker(client.DB, cfg.LockTTL)
		outboxStore := infraoutbox.NewStore(client.DB)
		box = outboxStore
		idStore = mongodb.NewIdempotencyStore(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		notifier = &notify.LogNotifier{Logger: logger}
		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka connect: %w", err)
			}
			notifier = &notify.KafkaNotifier{Producer: producer, Topic: cfg.NotifyTopic}
			worker := &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
				ID:          uuid.NewString(),
			}
			background = append(background, worker.Run)
		}
	default:
		store := memory.NewStore()
		uowFactory = memory.NewUoWFactory(store)
		locker = memory.NewListingLocker()
		box = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
		notifier = &notify.LogNotifier{Logger: logger}
		ready = func() error { return nil }
		if err := loadFixtures(ctx, store, logger); err != nil {
			logger.Warn("fixtures load failed", "error", err)
		}
	}

	var paymentsPort policies.PaymentsPort
	if cfg.PaymentsURL != "" {
		paymentsPort = payments.NewClient(cfg.PaymentsURL, cfg.PaymentsTimeout, logger)
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.AdmitReservationCommand{}.Key(), &bookingapp.AdmitReservationHandler{
		UoWFactory: uowFactory,
		Locker:     locker,
		Payments:   paymentsPort,
		Outbox:     box,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), &bookingapp.ConfirmBookingHandler{
		UoWFactory: uowFactory,
		Notifier:   notifier,
		Outbox:     box,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     box,
	})
	commands.RegisterHandler(commandBus, bookingapp.CompleteStaysCommand{}.Key(), &bookingapp.CompleteStaysHandler{
		UoWFactory: uowFactory,
		Outbox:     box,
	})
	commands.RegisterHandler(commandBus, pricingapp.ApplyPriceCommand{}.Key(), &pricingapp.ApplyPriceHandler{
		UoWFactory: uowFactory,
		Outbox:     box,
	})
	commands.RegisterHandler(commandBus, calendarapp.BlockDatesCommand{}.Key(), &calendarapp.BlockDatesHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, calendarapp.UnblockDateCommand{}.Key(), &calendarapp.UnblockDateHandler{
		UoWFactory: uowFactory,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, pricingapp.SuggestPriceQuery{}.Key(), &pricingapp.SuggestPriceHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, searchapp.RankListingsQuery{}.Key(), &searchapp.RankListingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, calendarapp.GetCalendarQuery{}.Key(), &calendarapp.GetCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.GuestBookingsQuery{}.Key(), &bookingapp.GuestBookingsHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	sweeper := &schedule.CheckoutSweeper{
		Commands:   commandBusWithMiddleware,
		UoWFactory: uowFactory,
		Interval:   cfg.SweepInterval,
		Logger:     logger,
	}
	background = append(background, sweeper.Run)

	return application{
		handlers: ginserver.Handlers{
			Reservation: ginserver.ReservationHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			PaymentWebhook: ginserver.PaymentWebhookHandler{
				Commands: commandBusWithMiddleware,
			},
			Pricing: ginserver.PricingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Search: ginserver.SearchHandler{
				Queries: queryBusWithMiddleware,
			},
			Calendar: ginserver.CalendarHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
		},
		ready:      ready,
		background: background,
	}, nil
}

func loadFixtures(ctx context.Context, store *memory.Store, logger *slog.Logger) error {
	listingsPath := getenv("LISTINGS_FIXTURES", filepath.Join("data", "listings.json"))
	if err := loadListingFixtures(ctx, store, listingsPath, logger); err != nil {
		return err
	}
	profilesPath := getenv("PROFILES_FIXTURES", filepath.Join("data", "profiles.json"))
	return loadProfileFixtures(ctx, store, profilesPath, logger)
}

func loadListingFixtures(ctx context.Context, store *memory.Store, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		currency := fx.Currency
		if currency == "" {
			currency = "USD"
		}
		listing, err := domainlistings.New(domainlistings.CreateParams{
			ID:            domainlistings.ListingID(fx.ID),
			Host:          domainlistings.HostID(fx.Host),
			Title:         fx.Title,
			Location:      fx.Location,
			PropertyType:  fx.PropertyType,
			Price:         money.Must(fx.NightlyRateCents, currency),
			BasePrice:     money.Must(fx.BaseRateCents, currency),
			MaxGuests:     fx.MaxGuests,
			Amenities:     fx.Amenities,
			Vibes:         fx.Vibes,
			WorkFriendly:  fx.WorkFriendly,
			WorkAmenities: fx.WorkAmenities,
			WifiSpeedMbps: fx.WifiSpeedMbps,
			IdealFor:      fx.IdealFor,
			SmartPricing:  fx.SmartPricing,
			Now:           now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := store.Listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

func loadProfileFixtures(ctx context.Context, store *memory.Store, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("profile fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []profileFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		profile := &domaintraveler.Profile{
			UserID:            fx.UserID,
			TravelIntent:      fx.TravelIntent,
			PreferredVibes:    fx.PreferredVibes,
			WorkNeeds:         fx.WorkNeeds,
			MustHaveAmenities: fx.MustHaveAmenities,
			BudgetRange:       fx.BudgetRange,
			PreferredTypes:    fx.PreferredTypes,
		}
		if err := store.Profiles.Save(ctx, profile); err != nil {
			logger.Error("cannot store fixture profile", "user_id", fx.UserID, "error", err)
		}
	}
	return nil
}

type profileFixture struct {
	UserID            string   `json:"user_id"`
	TravelIntent      string   `json:"travel_intent"`
	PreferredVibes    []string `json:"preferred_vibes"`
	WorkNeeds         []string `json:"work_needs"`
	MustHaveAmenities []string `json:"must_have_amenities"`
	BudgetRange       string   `json:"budget_range"`
	PreferredTypes    []string `json:"preferred_types"`
}

type listingFixture struct {
	ID               string   `json:"id"`
	Host             string   `json:"host"`
	Title            string   `json:"title"`
	Location         string   `json:"location"`
	PropertyType     string   `json:"property_type"`
	Currency         string   `json:"currency"`
	NightlyRateCents int64    `json:"nightly_rate_cents"`
	BaseRateCents    int64    `json:"base_rate_cents"`
	MaxGuests        int      `json:"max_guests"`
	Amenities        []string `json:"amenities"`
	Vibes            []string `json:"vibes"`
	WorkFriendly     bool     `json:"work_friendly"`
	WorkAmenities    []string `json:"work_amenities"`
	WifiSpeedMbps    *int     `json:"wifi_speed_mbps"`
	IdealFor         []string `json:"ideal_for"`
	SmartPricing     bool     `json:"smart_pricing"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
