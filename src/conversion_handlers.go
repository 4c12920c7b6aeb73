package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/AfricaChange/AfricaChange/src/db"
	"github.com/AfricaChange/AfricaChange/src/lib"
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/AfricaChange/AfricaChange/src/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// lookupRate resolves a currency pair through redis first, falling back
// to the rates table and refreshing the cache.
func lookupRate(from, to string) (float64, error) {
	key := fmt.Sprintf("rate:%s:%s", from, to)
	rd := lib.GetRedisClient()
	if rd != nil {
		if val, err := rd.Get(context.Background(), key).Result(); err == nil {
			if rate, err := strconv.ParseFloat(val, 64); err == nil {
				return rate, nil
			}
		}
	}

	var rate models.Rate
	db := db.GetDb()
	if err := db.
		Model(&models.Rate{}).
		Where(&models.Rate{FromCurrency: from, ToCurrency: to}).
		First(&rate).
		Error; err != nil {
		return 0, err
	}

	if rd != nil {
		if err := rd.SetEx(context.Background(), key, fmt.Sprint(rate.Rate), 5*time.Minute).Err(); err != nil {
			log.Printf("Error caching rate [%s]: %s\n", key, err.Error())
		}
	}
	return rate.Rate, nil
}

func conversionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/convert", func(ctx *gin.Context) {
			var body types.CreateConversionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			rate, err := lookupRate(body.FromCurrency, body.ToCurrency)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "no rate defined for this currency pair"})
				return
			}

			converted := math.Round(body.Amount*rate*100) / 100
			reference := utils.GenerateConversionReference()
			userID := userIDFromCtx(ctx)

			conversion := models.Conversion{
				UserID:          userID,
				FromCurrency:    body.FromCurrency,
				ToCurrency:      body.ToCurrency,
				AmountInitial:   body.Amount,
				AmountConverted: converted,
				SenderPhone:     body.SenderPhone,
				ReceiverPhone:   body.ReceiverPhone,
				Reference:       reference,
				Status:          types.CONVERSION_PENDING,
			}
			db := db.GetDb()
			if err := db.Create(&conversion).Error; err != nil {
				log.Printf("Error creating Conversion: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			ctx.JSON(http.StatusCreated, gin.H{"data": &conversion})
		}).
		POST("/convert/quote", func(ctx *gin.Context) {
			var body types.QuoteRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rate, err := lookupRate(body.FromCurrency, body.ToCurrency)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "no rate defined for this currency pair"})
				return
			}
			converted := math.Round(body.Amount*rate*100) / 100
			ctx.JSON(http.StatusOK, gin.H{
				"rate":             rate,
				"amount_converted": converted,
			})
		}).
		GET("/conversions/:reference", func(ctx *gin.Context) {
			var params types.ReferenceURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var conversion models.Conversion
			db := db.GetDb()
			if err := db.
				Model(&models.Conversion{}).
				Where(&models.Conversion{Reference: params.Reference}).
				First(&conversion).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": &conversion})
		})
	return g
}

// userIDFromCtx returns the authenticated user when the request came
// through the auth middleware, nil for anonymous flows.
func userIDFromCtx(ctx *gin.Context) *uint {
	if v, ok := ctx.Get("id"); ok {
		if id, ok := v.(uint); ok && id > 0 {
			return &id
		}
	}
	return nil
}
