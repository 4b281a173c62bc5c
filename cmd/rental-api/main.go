package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CarNest/CarNest/internal/booking"
	"github.com/CarNest/CarNest/internal/car"
	"github.com/CarNest/CarNest/internal/common/config"
	"github.com/CarNest/CarNest/internal/common/db"
	"github.com/CarNest/CarNest/internal/common/logger"
	"github.com/CarNest/CarNest/internal/common/middleware"
	"github.com/CarNest/CarNest/internal/common/server"
	"github.com/CarNest/CarNest/internal/common/tracing"
	"github.com/CarNest/CarNest/internal/storage"
	"github.com/CarNest/CarNest/internal/user"
)

var (
	configPath      = flag.String("config", "configs/rental-api.json", "config file path")
	consulConfigKey = flag.String("consul-config-key", "", "Consul KV key to load the config from instead of the file")
	consulHost      = flag.String("consul-host", "localhost", "Consul agent host for -consul-config-key")
	consulPort      = flag.Int("consul-port", 8500, "Consul agent port for -consul-config-key")
)

func main() {
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *consulConfigKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulConfigKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&user.User{}, &car.Car{}, &booking.Booking{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	images := storage.NewDiskStore(cfg.Storage.Dir, cfg.Storage.BaseURL)
	uploadBreaker := middleware.NewCircuitBreaker("image-upload", 5, 30*time.Second)

	userSvc := user.NewService(user.NewRepo(gormDB), cfg.Auth)
	carSvc := car.NewService(car.NewRepo(gormDB), images, uploadBreaker)
	bookingSvc := booking.NewService(booking.NewRepo(gormDB), car.NewRepo(gormDB))

	userHandler := user.NewHandler(userSvc, log)
	carHandler := car.NewHandler(carSvc, log, cfg.Storage.MaxUploadMB)
	bookingHandler := booking.NewHandler(bookingSvc, log)

	router := newRouter(cfg, log, userHandler, carHandler, bookingHandler)

	if err := server.RunHTTPServer(cfg, log, router); err != nil {
		log.Fatalf("rental-api exited with error: %v", err)
	}
}

func newRouter(cfg *config.Config, log logger.Logger, userHandler *user.Handler, carHandler *car.Handler, bookingHandler *booking.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.AccessLog(log),
		middleware.CORS(),
		middleware.Tracing(cfg.Server.Name),
		middleware.JWTAuth(cfg.Auth, log),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.Static("/images", cfg.Storage.Dir)

	api := r.Group("/api")
	{
		u := api.Group("/user")
		u.POST("/register", userHandler.Register)
		u.POST("/login", userHandler.Login)
		u.GET("/data", userHandler.Data)
		u.GET("/cars", carHandler.PublicCars)

		o := api.Group("/owner")
		o.POST("/change-role", userHandler.ChangeRole)
		owned := o.Group("/", middleware.RequireRole(user.RoleOwner))
		owned.POST("/add-car", carHandler.AddCar)
		owned.GET("/cars", carHandler.OwnerCars)
		owned.POST("/toggle-availability", carHandler.ToggleAvailability)
		owned.DELETE("/car/:carId", carHandler.DeleteCar)

		b := api.Group("/bookings")
		// The public search endpoint carries a rate limit since it is the
		// heaviest unauthenticated query.
		b.POST("/check-availability",
			middleware.RateLimit(middleware.NewTokenBucket(50, 25)),
			bookingHandler.CheckAvailability)
		b.POST("/create", bookingHandler.Create)
		b.GET("/user", bookingHandler.UserBookings)
		b.GET("/owner", middleware.RequireRole(user.RoleOwner), bookingHandler.OwnerBookings)
		b.POST("/change-status", middleware.RequireRole(user.RoleOwner), bookingHandler.ChangeStatus)
	}

	return r
}
