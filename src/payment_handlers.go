package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/AfricaChange/AfricaChange/src/db"
	"github.com/AfricaChange/AfricaChange/src/lib"
	"github.com/AfricaChange/AfricaChange/src/providers"
	"github.com/AfricaChange/AfricaChange/src/services"
	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/AfricaChange/AfricaChange/src/utils"
	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/payments/:provider", func(ctx *gin.Context) {
		providerName := ctx.Params.ByName("provider")
		var body types.InitiatePaymentRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		provider, err := providers.ForName(providerName)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		returnURL := fmt.Sprintf("%s/api/v1/webhook/%s", os.Getenv("APP_HOST"), providerName)
		ip := utils.ClientIP(ctx)
		userID := userIDFromCtx(ctx)

		db := db.GetDb()
		paymentURL, err := services.InitiatePayment(db, lib.GetRedisClient(), provider, body.Reference, body.Phone, userID, ip, returnURL)
		if err != nil {
			ctx.JSON(initiationStatus(err), gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"success": true, "payment_url": paymentURL})
	})
	return g
}

func initiationStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, services.ErrProvider):
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func webhookRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/:provider", func(ctx *gin.Context) {
		providerName := ctx.Params.ByName("provider")
		ip := utils.ClientIP(ctx)

		if !providers.Allowed(providerName, ip) {
			log.Printf("[webhook] Rejected callback from unauthorized IP %s for %s\n", ip, providerName)
			ctx.Status(http.StatusForbidden)
			return
		}

		provider, err := providers.ForName(providerName)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		raw, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}

		signature := ctx.GetHeader(provider.SignatureHeader())
		if !provider.VerifyCallback(raw, signature) {
			log.Printf("[webhook] Invalid %s signature from %s\n", providerName, ip)
			ctx.Status(http.StatusForbidden)
			return
		}

		var payload types.JSONB
		if err := json.Unmarshal(raw, &payload); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}

		cb, err := provider.Normalize(payload)
		if err != nil {
			log.Printf("[webhook] %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if cb.Reference == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing reference"})
			return
		}

		db := db.GetDb()
		transaction, err := services.ProcessCallback(db, provider, cb, payload, ip)
		if err != nil {
			ctx.JSON(callbackStatus(err), gin.H{"error": err.Error()})
			return
		}

		// Replays and already-recorded deliveries land here too:
		// retried provider webhooks must get 200-equivalent behavior.
		ctx.JSON(http.StatusOK, gin.H{"reference": transaction.Reference, "status": transaction.Status})
	})
	return apiv1
}

func callbackStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownTransaction):
		return http.StatusNotFound
	case errors.Is(err, services.ErrReplayDetected):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyFinalized):
		return http.StatusConflict
	case errors.Is(err, services.ErrStaleCallback):
		return http.StatusForbidden
	case errors.Is(err, providers.ErrUnknownStatus):
		return http.StatusBadRequest
	}
	return http.StatusBadRequest
}
