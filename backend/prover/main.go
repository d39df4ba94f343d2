package prover

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/polybase/payy/backend/pkg/health"
	"github.com/polybase/payy/backend/pkg/logger"
	"github.com/polybase/payy/backend/pkg/metrics"
	"github.com/polybase/payy/backend/pkg/middleware"
)

// Run starts the prover HTTP service: a stateless proof-generation oracle
// for the mint, burn, UTXO-transfer and aggregate circuits. Callers (the aggregator)
// supply every witness, including Merkle membership proofs, since the
// prover holds no tree state of its own.
func Run() error {
	if err := logger.Initialize(logger.Config{
		Environment: os.Getenv("ENVIRONMENT"),
		Level:       os.Getenv("LOG_LEVEL"),
		Service:     "prover",
		Version:     "1.0.0",
	}); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metrics.Initialize(metrics.Config{ServiceName: "prover"})

	config := LoadConfig()

	cm := NewCircuitManager()
	if err := cm.Initialize(); err != nil {
		logger.Fatal("failed to initialize circuit manager", zap.Error(err))
	}
	metrics.SetCircuitInitialized(true)

	api := NewAPI(cm)

	router := gin.New()
	router.Use(logger.GinLogger())
	router.Use(logger.GinRecovery())
	router.Use(middleware.Security())
	router.Use(metrics.HTTPMiddleware())

	limiter := middleware.NewRateLimiter(50, 10) // proving is expensive
	router.Use(limiter.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:5174", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	healthConfig := health.Config{
		ServiceName: "prover",
		Version:     "1.0.0",
		Checks: map[string]health.Checker{
			"circuit": func() health.CheckResult {
				if !cm.initialized {
					return health.CheckResult{Status: "unhealthy", Message: "circuits not initialized"}
				}
				return health.CheckResult{Status: "healthy"}
			},
		},
	}
	router.GET("/health", health.Handler(healthConfig))
	router.GET("/health/ready", health.ReadinessHandler())
	router.GET("/health/live", health.LivenessHandler())

	router.POST("/proof/mint", api.GenerateMintProof)
	router.POST("/proof/burn", api.GenerateBurnProof)
	router.POST("/proof/utxo", api.GenerateUTXOProof)
	router.POST("/proof/aggregate", api.GenerateAggregateProof)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("starting prover service", zap.String("port", config.Port))
	return router.Run(":" + config.Port)
}
