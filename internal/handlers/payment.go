package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"outfit-studio-backend/internal/config"
	"outfit-studio-backend/internal/creem"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
)

type PaymentHandler struct {
	cfg         *config.Config
	creemClient *creem.Client
	dbClient    *database.Client
}

var paymentLog = logger.New("api/pay")

func NewPaymentHandler(cfg *config.Config, creemClient *creem.Client, dbClient *database.Client) *PaymentHandler {
	return &PaymentHandler{
		cfg:         cfg,
		creemClient: creemClient,
		dbClient:    dbClient,
	}
}

// CreateCheckout godoc
// @Summary     Start a credit purchase
// @Description Creates the order row and opens a Creem checkout session,
// @Description returning the URL to send the buyer to.
// @Tags        payment
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Envelope{data=models.CheckoutResponse}
// @Router      /api/checkout/creem [post]
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	userUUID := middleware.UserUUID(c)
	if userUUID == "" {
		respErr(c, "User not authenticated")
		return
	}
	if h.cfg.CreemProductID == "" {
		paymentLog.Error().Msg("CREEM_PRODUCT_ID not configured")
		respErr(c, "checkout fail")
		return
	}

	order := &models.Order{
		OrderNo:  uuid.NewString(),
		UserUUID: userUUID,
		Credits:  h.cfg.CreemProductCredits,
	}
	if err := h.dbClient.CreateOrder(c.Request.Context(), order); err != nil {
		paymentLog.Error().Err(err).Msg("failed to create order")
		respErr(c, "checkout fail")
		return
	}

	checkout, err := h.creemClient.CreateCheckout(c.Request.Context(), h.cfg.CreemProductID, order.OrderNo, h.cfg.PaySuccessURL)
	if err != nil {
		paymentLog.Error().Err(err).Str("order_no", order.OrderNo).Msg("failed to create checkout")
		respErr(c, "checkout fail")
		return
	}

	paymentLog.Info().Str("order_no", order.OrderNo).Str("checkout_id", checkout.ID).Msg("checkout created")
	respData(c, models.CheckoutResponse{
		CheckoutURL: checkout.CheckoutURL,
		OrderNo:     order.OrderNo,
	})
}

// CreemCallback godoc
// @Summary     Creem payment callback
// @Description Verifies the checkout with Creem, marks the order paid, grants
// @Description the purchased credits, and redirects to the pay result page.
// @Tags        payment
// @Param       checkout_id query string true "Creem checkout id"
// @Param       request_id  query string true "Order number passed at checkout"
// @Success     302
// @Router      /api/pay/callback/creem [get]
func (h *PaymentHandler) CreemCallback(c *gin.Context) {
	checkoutID := c.Query("checkout_id")
	requestID := c.Query("request_id")
	if checkoutID == "" || requestID == "" {
		paymentLog.Warn().Msg("callback missing checkout_id or request_id")
		c.Redirect(http.StatusFound, h.cfg.PayFailURL)
		return
	}

	checkout, err := h.creemClient.RetrieveCheckout(c.Request.Context(), checkoutID)
	if err != nil {
		paymentLog.Error().Err(err).Str("checkout_id", checkoutID).Msg("failed to retrieve checkout")
		c.Redirect(http.StatusFound, h.cfg.PayFailURL)
		return
	}

	// The order number travels through Creem as request_id; a mismatch
	// means the callback was tampered with or replayed.
	if checkout.RequestID != requestID {
		paymentLog.Warn().Str("checkout_request_id", checkout.RequestID).Str("request_id", requestID).Msg("request id mismatch")
		c.Redirect(http.StatusFound, h.cfg.PayFailURL)
		return
	}

	if checkout.Order == nil || checkout.Order.Status != "paid" {
		paymentLog.Warn().Str("checkout_id", checkoutID).Msg("checkout not paid")
		c.Redirect(http.StatusFound, h.cfg.PayFailURL)
		return
	}

	order, err := h.dbClient.GetOrder(c.Request.Context(), requestID)
	if err != nil {
		paymentLog.Error().Err(err).Str("order_no", requestID).Msg("unknown order")
		c.Redirect(http.StatusFound, h.cfg.PayFailURL)
		return
	}
	if order.Status == models.OrderStatusPaid {
		c.Redirect(http.StatusFound, h.cfg.PaySuccessURL)
		return
	}

	paidEmail := ""
	if checkout.Customer != nil {
		paidEmail = checkout.Customer.Email
	}

	if err := h.dbClient.MarkOrderPaid(c.Request.Context(), requestID, paidEmail, string(checkout.Raw)); err != nil {
		paymentLog.Error().Err(err).Str("order_no", requestID).Msg("failed to settle order")
		c.Redirect(http.StatusFound, h.cfg.PayFailURL)
		return
	}

	paymentLog.Info().Str("order_no", requestID).Str("checkout_id", checkoutID).Msg("order settled")
	c.Redirect(http.StatusFound, h.cfg.PaySuccessURL)
}
