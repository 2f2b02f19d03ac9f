package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/booking"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/config"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/hotel"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/metrics"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/planner"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/review"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/stream"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/tour"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/upload"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/user"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/vehicle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// bodyLimit leaves room for multipart overhead on a maximum size image.
const bodyLimit = upload.MaxImageBytes + 1<<20

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     db.Querier
	Redis  *redis.Client
	Mongo  *mongo.Client
	Stream *stream.Hub
	Auth   *auth.Service
	logger *slog.Logger
}

var newGeneratorFn = func(ctx context.Context, cfg config.Config) (planner.Generator, error) {
	return planner.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

// NewServer wires every route. pg, redisClient and mongoClient may be nil:
// without Postgres the API answers 503, without Redis OTPs and booking events
// stay in-process, without Mongo uploads are disabled.
func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client, mongoClient *mongo.Client) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	var q db.Querier = db.Unavailable{}
	if pg != nil {
		q = pg
	}

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     q,
		Redis:  redisClient,
		Mongo:  mongoClient,
		Stream: stream.NewHub(redisClient),
		logger: slog.Default(),
	}
	s.Auth = auth.NewService(cfg.JWTSecret, q).
		WithRecovery(auth.NewOTPStore(redisClient), auth.NewLogNotifier(s.logger), cfg.OTPTTL).
		WithCookie(cfg.CookieName, cfg.CookieSecure)

	metrics.Register()
	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.App.Group("/api")
	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret, s.Cfg.CookieName)

	users := user.NewService(s.DB)
	vendorGate := auth.RequireApprovedVendor(users)

	usersGroup := api.Group("/users")
	auth.RegisterRoutes(usersGroup, s.Auth)
	user.RegisterRoutes(usersGroup, users, jwtMiddleware)

	hotel.RegisterRoutes(api.Group("/hotels"), hotel.NewService(s.DB), jwtMiddleware, vendorGate)
	tour.RegisterRoutes(api.Group("/tours"), tour.NewService(s.DB), jwtMiddleware, vendorGate)
	vehicle.RegisterRoutes(api.Group("/vehicles"), vehicle.NewService(s.DB), jwtMiddleware, vendorGate)
	review.RegisterRoutes(api.Group("/reviews"), review.NewService(s.DB), jwtMiddleware)

	bookings := api.Group("/bookings")
	stream.RegisterRoutes(bookings, s.Stream, jwtMiddleware)
	booking.RegisterRoutes(bookings, booking.NewService(s.DB, listing.NewLookup(s.DB), s.Stream, s.logger), jwtMiddleware)

	planner.RegisterRoutes(api.Group("/ai"), s.plannerService(), jwtMiddleware)
	upload.RegisterRoutes(api.Group("/upload"), s.uploadService(), jwtMiddleware)
}

func (s *Server) plannerService() *planner.Service {
	table, err := planner.DefaultTable()
	if err != nil {
		log.Printf("distance table: %v", err)
	}

	var gen planner.Generator
	if s.Cfg.GeminiAPIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if gen, err = newGeneratorFn(ctx, s.Cfg); err != nil {
			log.Printf("AI planner disabled: %v", err)
			gen = nil
		}
	}
	return planner.NewService(s.DB, gen, table, s.logger)
}

func (s *Server) uploadService() *upload.Service {
	var store upload.ObjectStore
	if s.Mongo != nil {
		gridfs, err := upload.NewGridFSStore(s.Mongo, s.Cfg.MongoDB)
		if err != nil {
			log.Printf("uploads disabled: %v", err)
		} else {
			store = gridfs
		}
	}
	return upload.NewService(s.DB, store, s.Cfg.PublicBaseURL)
}

// Seed creates the configured admin account. It is a no-op when ADMIN_EMAIL
// or ADMIN_PASSWORD is unset.
func (s *Server) Seed(ctx context.Context) error {
	if s.Cfg.AdminEmail == "" || s.Cfg.AdminPassword == "" {
		return nil
	}
	return s.Auth.EnsureAdmin(ctx, s.Cfg.AdminEmail, s.Cfg.AdminPassword)
}

// ErrorHandler renders every error as {"message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, pgx.ErrNoRows):
		code = fiber.StatusNotFound
	case errors.Is(err, db.ErrNoDatabase):
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

// Close stops the stream subscriber. Connections are owned by the caller.
func (s *Server) Close() {
	s.Stream.Close()
}
