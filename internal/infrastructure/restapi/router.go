package restapi

import (
	"net/http"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// SetupRouter wires the API routes, health, metrics and swagger UI.
func SetupRouter(h *Handler, cfg *configloader.Config, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log.Named("http")))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.MaxAge = 12 * time.Hour
	if len(cfg.Server.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}
	router.Use(cors.New(corsCfg))

	api := router.Group("/api")
	{
		api.GET("/wallets", h.ListWallets)
		api.POST("/wallets", h.AddWallet)
		api.DELETE("/wallets/:address", h.RemoveWallet)

		api.POST("/aggregated-balances", h.AggregatedBalances)
		api.POST("/token-history/:token", h.TokenHistory)

		api.POST("/track-wallet/:address", h.TrackWallet)
		api.POST("/preload-historical/:address", h.PreloadHistorical)
		api.POST("/recalculate-wallet/:address", h.RecalculateWallet)
		api.POST("/exclude-day/:address/:token", h.ExcludeDay)

		api.POST("/daily-gains", h.DailyGains)
		api.POST("/apy-calculations", h.APYCalculations)
		api.POST("/compound-projection", h.CompoundProjection)

		api.GET("/projects", h.Projects)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	metrics.MustRegister()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.StaticFile("/docs/swagger.yaml", "./docs/swagger.yaml")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.yaml")))

	return router
}
