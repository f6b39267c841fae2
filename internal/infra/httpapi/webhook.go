package httpapi

import (
	"crypto/subtle"
	"net/http"

	"task_practice_bot/internal/infra/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// SecretHeader carries the secret configured with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler accepts Telegram updates pushed over HTTP and dispatches them synchronously.
type WebhookHandler struct {
	handler telegram.MessageHandler
	secret  string
	logger  *logrus.Entry
}

func NewWebhookHandler(h telegram.MessageHandler, secret string, logger *logrus.Entry) *WebhookHandler {
	return &WebhookHandler{handler: h, secret: secret, logger: logger}
}

func (h *WebhookHandler) Register(r gin.IRoutes) {
	r.POST("/webhook", h.Handle)
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.logger.Warn("Webhook call with invalid secret token")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	var upd telebot.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.WithError(err).Error("Failed to decode webhook update")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	msg, ok := telegram.MessageFromUpdate(&upd)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := h.handler.HandleMessage(c.Request.Context(), msg); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"update_id": upd.ID,
			"user_id":   msg.UserID,
		}).Error("Failed to handle update")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
