package aggregator

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/polybase/payy/backend/pkg/health"
	"github.com/polybase/payy/backend/pkg/logger"
	"github.com/polybase/payy/backend/pkg/metrics"
	"github.com/polybase/payy/backend/pkg/middleware"
	"github.com/polybase/payy/circuit"
	"github.com/polybase/payy/settlement"
	"github.com/polybase/payy/smirk"
	"github.com/polybase/payy/verifier"
)

// backlogDegradedFactor is the multiple of one block's worth of slots a
// mempool backlog has to reach before the health check reports degraded
// rather than healthy.
const backlogDegradedFactor = 3

// Run starts the aggregator service: it owns the live shielded UTXO
// tree, queues submitted transactions, periodically assembles and
// submits blocks, and exposes the tree root, mempool depth, witnesses,
// transaction submission and the last submitted calldata over HTTP.
func Run() error {
	if err := logger.Initialize(logger.Config{
		Environment: os.Getenv("ENVIRONMENT"),
		Level:       os.Getenv("LOG_LEVEL"),
		Service:     "aggregator",
		Version:     "1.0.0",
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	metrics.Initialize(metrics.Config{ServiceName: "aggregator"})

	config := LoadConfig()

	mintVK, err := verifier.LoadVerifyingKey(filepath.Join(config.KeyDir, "mint.vk"))
	if err != nil {
		logger.Fatal("failed to load mint verifying key", zap.Error(err))
	}
	burnVK, err := verifier.LoadVerifyingKey(filepath.Join(config.KeyDir, "burn.vk"))
	if err != nil {
		logger.Fatal("failed to load burn verifying key", zap.Error(err))
	}
	aggregateVK, err := verifier.LoadVerifyingKey(filepath.Join(config.KeyDir, "aggregate.vk"))
	if err != nil {
		logger.Fatal("failed to load aggregate verifying key", zap.Error(err))
	}

	state := &settlement.State{}
	caller := common.Address{1}
	if err := state.Initialize(
		common.Address{},
		newDevToken(),
		verifier.AggregateVerifier{VK: aggregateVK},
		verifier.MintVerifier{VK: mintVK},
		verifier.BurnVerifier{VK: burnVK},
		[]common.Address{caller},
		[]common.Address{},
		smirk.EmptyRoot(),
		settlement.V4,
		big.NewInt(1),
		common.Address{},
	); err != nil {
		logger.Fatal("failed to initialize settlement state", zap.Error(err))
	}

	tree := NewTree()
	mempool := NewMempool()

	validatorClients := make([]*ValidatorClient, len(config.ValidatorURLs))
	for i, url := range config.ValidatorURLs {
		validatorClients[i] = NewValidatorClient(url, config.HTTPTimeout)
	}

	builder := &BlockBuilder{
		Tree:        tree,
		Mempool:     mempool,
		Prover:      NewProverClient(config.ProverURL, config.HTTPTimeout),
		Validators:  validatorClients,
		Accumulator: devAccumulator{},
		Settlement:  state,
		Caller:      caller,
	}

	stop := make(chan struct{})
	go batchLoop(builder, config.BatchInterval, stop)
	defer close(stop)

	api := NewAPI(mempool, tree, builder)

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

	healthConfig := health.Config{
		ServiceName: "aggregator",
		Version:     "1.0.0",
		Checks: map[string]health.Checker{
			"mempool_backlog": func() health.CheckResult {
				depth := mempool.Len()
				if depth > backlogDegradedFactor*circuit.NumAggregatedUTXOs {
					return health.CheckResult{
						Status:  "degraded",
						Message: fmt.Sprintf("mempool depth %d exceeds %dx block capacity", depth, backlogDegradedFactor),
					}
				}
				return health.CheckResult{Status: "healthy"}
			},
		},
	}
	router.GET("/health", health.Handler(healthConfig))
	router.GET("/health/ready", health.ReadinessHandler())
	router.GET("/health/live", health.LivenessHandler())

	router.GET("/info", api.Info)
	router.POST("/tx/submit", api.SubmitTransaction)
	router.POST("/tree/witness", api.GetWitness)
	router.GET("/block/calldata", api.GetLastCalldata)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("starting aggregator service", zap.String("port", config.Port))
	return router.Run(":" + config.Port)
}

// batchLoop builds a block every interval as long as the mempool has
// pending transactions. It runs until stop is closed.
func batchLoop(builder *BlockBuilder, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := builder.BuildBlock(); err != nil {
				logger.Error("building block", zap.Error(err))
			}
		case <-stop:
			return
		}
	}
}
