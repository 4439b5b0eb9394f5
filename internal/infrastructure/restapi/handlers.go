package restapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// Handler serves the wallet tracker API.
type Handler struct {
	wallets   port.WalletService
	tracker   port.TrackingService
	backfill  port.BackfillService
	analytics port.AnalyticsService
	now       func() time.Time
}

// NewHandler creates a new Handler. now defaults to time.Now.
func NewHandler(ws port.WalletService, ts port.TrackingService, bs port.BackfillService, as port.AnalyticsService, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{wallets: ws, tracker: ts, backfill: bs, analytics: as, now: now}
}

type selectionRequest struct {
	SelectedWallets []string `json:"selectedWallets"`
}

type addWalletRequest struct {
	Address string `json:"address" binding:"required"`
}

type preloadRequest struct {
	Days      int  `json:"days"`
	Overwrite bool `json:"overwrite"`
}

type excludeDayRequest struct {
	Date    string `json:"date" binding:"required"`
	Exclude *bool  `json:"exclude" binding:"required"`
}

type projectionRequest struct {
	SelectedWallets []string `json:"selectedWallets"`
	AnnualCashout   float64  `json:"annualCashout"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type trackResponse struct {
	successResponse
	Summary entity.TrackingSummary `json:"summary"`
}

type preloadResponse struct {
	successResponse
	entity.BackfillSummary
}

type recalculateResponse struct {
	successResponse
	TokensRecalculated int `json:"tokensRecalculated"`
}

type excludeDayResponse struct {
	successResponse
	Balances entity.TokenSeries `json:"balances"`
}

// bindOptionalJSON binds a JSON body when one is present.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ListWallets godoc: GET /api/wallets
func (h *Handler) ListWallets(c *gin.Context) {
	wallets, err := h.wallets.ListWallets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallets)
}

// AddWallet godoc: POST /api/wallets
func (h *Handler) AddWallet(c *gin.Context) {
	var req addWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errors.New("address is required"))
		return
	}
	wallet, err := h.wallets.AddWallet(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wallet)
}

// RemoveWallet godoc: DELETE /api/wallets/:address
func (h *Handler) RemoveWallet(c *gin.Context) {
	if err := h.wallets.RemoveWallet(c.Request.Context(), c.Param("address")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

// AggregatedBalances godoc: POST /api/aggregated-balances
func (h *Handler) AggregatedBalances(c *gin.Context) {
	var req selectionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	balances, err := h.analytics.AggregatedBalances(c.Request.Context(), req.SelectedWallets)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// TokenHistory godoc: POST /api/token-history/:token
func (h *Handler) TokenHistory(c *gin.Context) {
	var req selectionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	history, err := h.analytics.TokenHistory(c.Request.Context(), req.SelectedWallets, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// TrackWallet godoc: POST /api/track-wallet/:address
func (h *Handler) TrackWallet(c *gin.Context) {
	summary, err := h.tracker.TrackWallet(c.Request.Context(), c.Param("address"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trackResponse{
		successResponse: successResponse{Success: true, Message: "Wallet tracking completed"},
		Summary:         summary,
	})
}

// PreloadHistorical godoc: POST /api/preload-historical/:address
func (h *Handler) PreloadHistorical(c *gin.Context) {
	req := preloadRequest{Days: 30}
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	summary, err := h.backfill.Preload(c.Request.Context(), c.Param("address"), req.Days, h.now(), req.Overwrite)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preloadResponse{successResponse: successResponse{Success: true}, BackfillSummary: summary})
}

// RecalculateWallet godoc: POST /api/recalculate-wallet/:address
func (h *Handler) RecalculateWallet(c *gin.Context) {
	n, err := h.wallets.RecalculateWallet(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recalculateResponse{successResponse: successResponse{Success: true}, TokensRecalculated: n})
}

// ExcludeDay godoc: POST /api/exclude-day/:address/:token
func (h *Handler) ExcludeDay(c *gin.Context) {
	var req excludeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errors.New("date and exclude are required"))
		return
	}
	date, err := entity.ParseDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	series, err := h.wallets.SetExcluded(c.Request.Context(), c.Param("address"), c.Param("token"), date, *req.Exclude)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, excludeDayResponse{successResponse: successResponse{Success: true}, Balances: series})
}

// DailyGains godoc: POST /api/daily-gains
func (h *Handler) DailyGains(c *gin.Context) {
	var req selectionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.analytics.DailyGains(c.Request.Context(), req.SelectedWallets, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// APYCalculations godoc: POST /api/apy-calculations
func (h *Handler) APYCalculations(c *gin.Context) {
	var req selectionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.analytics.APY(c.Request.Context(), req.SelectedWallets, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CompoundProjection godoc: POST /api/compound-projection
func (h *Handler) CompoundProjection(c *gin.Context) {
	var req projectionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.analytics.Projection(c.Request.Context(), req.SelectedWallets, req.AnnualCashout, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Projects godoc: GET /api/projects
func (h *Handler) Projects(c *gin.Context) {
	projects, err := h.analytics.Projects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}
