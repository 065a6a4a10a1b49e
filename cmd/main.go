package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"combat/internal/config"
	"combat/internal/database"
	"combat/internal/external"
	"combat/internal/handlers"
	"combat/internal/middleware"
	"combat/internal/monitoring"
	"combat/internal/repository"
	"combat/internal/service"
)

// Version du service (à définir lors du build)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Initialisation du logger
	initLogger()

	logrus.WithFields(logrus.Fields{
		"service":    "combat",
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("⚔️  Starting Combat Service...")

	// Chargement de la configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}
	configureLogger(cfg.Logging)

	// Connexion à la base de données
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Exécution des migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Connexion à Redis (cache de session et verrous d'action)
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logrus.Fatal("Failed to connect to Redis: ", err)
	}

	// Initialisation des repositories
	combatRepo := repository.NewCombatRepository(db)
	contentRepo := repository.NewContentRepository(db)
	sessionCache := repository.NewSessionCache(redisClient, cfg.Combat.SessionCacheTTL, cfg.Combat.ActionLockTTL)

	// Clients des services externes
	playerClient := external.NewPlayerClient(cfg)
	var lootResolver external.LootResolverInterface
	if cfg.Services.LootService.URL != "" {
		lootResolver = external.NewLootClient(cfg)
	} else {
		logrus.Info("Loot service URL not configured, loot drops disabled")
		lootResolver = external.NewNoLootResolver()
	}

	// Initialisation du service principal
	formulaEngine := service.NewFormulaEngine()
	combatService := service.NewCombatService(
		cfg,
		combatRepo,
		contentRepo,
		sessionCache,
		playerClient,
		lootResolver,
		formulaEngine,
	)

	// Monitoring
	metrics := monitoring.NewMetrics()
	healthChecker := monitoring.NewHealthChecker(db, redisClient)

	// Initialisation des handlers
	combatHandler := handlers.NewCombatHandler(combatService)

	// Configuration du mode Gin
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configuration des routes
	router := setupRoutes(combatHandler, healthChecker, metrics, cfg)

	// Configuration du serveur HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Démarrage du serveur en arrière-plan
	go func() {
		logrus.WithFields(logrus.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
			"env":  cfg.Server.Environment,
		}).Info("⚔️  Combat Service started successfully")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Gestion gracieuse de l'arrêt
	gracefulShutdown(server, redisClient)
}

// setupRoutes configure toutes les routes du service Combat
func setupRoutes(
	combatHandler *handlers.CombatHandler,
	healthChecker *monitoring.HealthChecker,
	metrics *monitoring.Metrics,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Middleware globaux
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Monitoring.HealthPath, cfg.Monitoring.MetricsPath))
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(metrics.Middleware())

	// Routes de santé et monitoring (sans auth)
	router.GET(cfg.Monitoring.HealthPath, healthChecker.HealthCheck)
	router.GET(cfg.Monitoring.HealthPath+"/ready", healthChecker.ReadinessCheck)
	router.GET(cfg.Monitoring.HealthPath+"/live", healthChecker.LivenessCheck)
	router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Routes de combat (authentification JWT requise)
		combat := v1.Group("/combat")
		combat.Use(middleware.AuthMiddleware(cfg))
		if cfg.RateLimit.RequestsPerMinute > 0 {
			combat.Use(middleware.RateLimit(cfg.RateLimit))
		}
		{
			combat.POST("/start", combatHandler.StartCombat)
			combat.GET("/current", combatHandler.GetCurrentCombat)
			combat.POST("/action", combatHandler.ExecuteAction)
			combat.POST("/flee", combatHandler.Flee)
		}
	}

	return router
}

// initLogger initialise le système de logging
func initLogger() {
	// Configuration du format de log selon l'environnement
	if os.Getenv("SERVER_ENVIRONMENT") == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.SetOutput(os.Stdout)
}

// configureLogger applique le niveau et le format chargés depuis la configuration
func configureLogger(cfg config.LoggingConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logrus.SetLevel(level)
	}

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

// gracefulShutdown gère l'arrêt gracieux du service
func gracefulShutdown(server *http.Server, redisClient *redis.Client) {
	// Canal pour recevoir les signaux d'interruption
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Attendre le signal
	<-quit
	logrus.Info("⚔️  Combat Service is shutting down...")

	// Timeout pour l'arrêt gracieux
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Arrêter les nouvelles connexions
	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	// Fermer la connexion Redis
	if err := redisClient.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close Redis connection")
	}

	logrus.Info("⚔️  Combat Service stopped gracefully")
}
