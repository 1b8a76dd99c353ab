package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/middleware"
	"github.com/open-builders/satchat-backend/internal/domain/account"
	accountsvc "github.com/open-builders/satchat-backend/internal/service/account"
	"github.com/open-builders/satchat-backend/internal/service/claim"
)

// AccountHandlers serve the Mini App endpoints of the authenticated user.
type AccountHandlers struct {
	accounts *accountsvc.Service
	claims   *claim.Processor
}

func NewAccountHandlers(accounts *accountsvc.Service, claims *claim.Processor) *AccountHandlers {
	return &AccountHandlers{accounts: accounts, claims: claims}
}

func (h *AccountHandlers) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/me")
	{
		me.GET("", h.getMe)
		me.GET("/rewards", h.getRewards)
		me.POST("/wallet", h.linkWallet)
		me.POST("/claim", h.claim)
	}
}

// @Summary Get current account
// @Description Returns the account of the Telegram user, creating it on first contact.
// @Tags account
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} AccountResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /api/v1/me [get]
func (h *AccountHandlers) getMe(c *gin.Context) {
	acc, err := h.accounts.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(acc, h.claims.MinWithdrawal()))
}

// @Summary List recent rewards
// @Tags account
// @Produce json
// @Security TelegramInitData
// @Param limit query int false "Max items (1-100)" default(20)
// @Success 200 {object} RewardsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /api/v1/me/rewards [get]
func (h *AccountHandlers) getRewards(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			middleware.RespondError(c, apperrors.NewValidationError("limit", "must be between 1 and 100"))
			return
		}
		limit = n
	}
	events, err := h.accounts.RecentRewards(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if events == nil {
		events = []account.RewardEvent{}
	}
	c.JSON(http.StatusOK, RewardsResponse{Items: events})
}

// @Summary Link Lightning address
// @Tags account
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body LinkWalletRequest true "Lightning address"
// @Success 200 {object} LinkWalletResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid wallet address"
// @Failure 401 {object} middleware.ErrorResponse
// @Router /api/v1/me/wallet [post]
func (h *AccountHandlers) linkWallet(c *gin.Context) {
	var req LinkWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, bindError(err, "address"))
		return
	}
	addr, err := h.accounts.LinkWallet(c.Request.Context(), middleware.UserID(c), req.Address)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LinkWalletResponse{WalletAddress: addr})
}

// @Summary Claim balance
// @Description Debits the full balance and returns manual payout instructions.
// @Tags account
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} ClaimResponse
// @Failure 422 {object} middleware.ErrorResponse "NO_WALLET_LINKED, ZERO_BALANCE or BELOW_MINIMUM"
// @Failure 500 {object} middleware.ErrorResponse "CLAIM_FAILED"
// @Router /api/v1/me/claim [post]
func (h *AccountHandlers) claim(c *gin.Context) {
	cl, err := h.claims.Claim(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ClaimResponse{
		Claim: *cl,
		Instructions: []string{
			"Open your Lightning wallet",
			fmt.Sprintf("Send a payment to: %s", cl.WalletAddress),
			fmt.Sprintf("Amount: %d sats", cl.Amount),
		},
	})
}
