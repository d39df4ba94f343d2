package validator

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

// Run starts the validator HTTP service: a thin signing oracle a validator
// operator runs next to their key, exposing proposal signing over HTTP
// rather than embedding key material in the aggregator (§4.3 item e, §5).
func Run() error {
	if err := logger.Initialize(logger.Config{
		Environment: os.Getenv("ENVIRONMENT"),
		Level:       os.Getenv("LOG_LEVEL"),
		Service:     "validator",
		Version:     "1.0.0",
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	metrics.Initialize(metrics.Config{ServiceName: "validator"})

	config := LoadConfig()

	var signer *Signer
	var err error
	if config.PrivateKey == "" {
		var hexKey string
		signer, hexKey, err = GenerateSigner()
		if err != nil {
			logger.Fatal("failed to generate validator key", zap.Error(err))
		}
		logger.Info("generated development validator key", zap.String("private_key", hexKey))
	} else {
		signer, err = NewSigner(config.PrivateKey)
		if err != nil {
			logger.Fatal("failed to load validator key", zap.Error(err))
		}
	}
	logger.Info("validator identity", zap.String("address", signer.Address().Hex()))

	api := NewAPI(signer)

	router := gin.New()
	router.Use(logger.GinLogger())
	router.Use(logger.GinRecovery())
	router.Use(middleware.Security())
	router.Use(metrics.HTTPMiddleware())

	limiter := middleware.NewRateLimiter(100, 20)
	router.Use(limiter.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:5174", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.GET("/health", health.Handler(health.Config{ServiceName: "validator", Version: "1.0.0"}))
	router.GET("/health/ready", health.ReadinessHandler())
	router.GET("/health/live", health.LivenessHandler())

	router.GET("/info", api.Info)
	router.POST("/proposal/sign", api.SignProposal)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("starting validator service", zap.String("port", config.Port))
	return router.Run(":" + config.Port)
}
