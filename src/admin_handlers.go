package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AfricaChange/AfricaChange/src/db"
	"github.com/AfricaChange/AfricaChange/src/middlewares"
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/services"
	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/AfricaChange/AfricaChange/src/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("/admin", middlewares.AdminMiddleware)

	admin.POST("/transactions/:reference/validate", func(ctx *gin.Context) {
		var params types.ReferenceURIParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var body types.AdminActionRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		transaction, err := withLockedTransaction(params.Reference, func(tx *gorm.DB, transaction *models.Transaction) error {
			return services.AdminValidate(tx, transaction, ctx.GetUint("admin_id"), utils.ClientIP(ctx), body.Reason)
		})
		if err != nil {
			ctx.JSON(adminStatus(err), gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"reference": transaction.Reference, "status": transaction.Status})
	})

	admin.POST("/transactions/:reference/block", func(ctx *gin.Context) {
		var params types.ReferenceURIParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var body types.AdminActionRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		transaction, err := withLockedTransaction(params.Reference, func(tx *gorm.DB, transaction *models.Transaction) error {
			return services.AdminBlock(tx, transaction, ctx.GetUint("admin_id"), utils.ClientIP(ctx), body.Reason)
		})
		if err != nil {
			ctx.JSON(adminStatus(err), gin.H{"error": err.Error()})
			return
		}
		services.AlertCritical(fmt.Sprintf("Transaction %s blocked by admin: %s", transaction.Reference, body.Reason))
		ctx.JSON(http.StatusOK, gin.H{"reference": transaction.Reference, "status": transaction.Status})
	})

	admin.POST("/transactions/:reference/refund", func(ctx *gin.Context) {
		var params types.ReferenceURIParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var body types.AdminRefundRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		transaction, err := withLockedTransaction(params.Reference, func(tx *gorm.DB, transaction *models.Transaction) error {
			return services.AdminRefund(tx, transaction, ctx.GetUint("admin_id"), utils.ClientIP(ctx), body.Amount, body.Reason)
		})
		if err != nil {
			ctx.JSON(adminStatus(err), gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"reference": transaction.Reference, "status": transaction.Status})
	})

	return admin
}

// withLockedTransaction loads the target row FOR UPDATE so concurrent
// admin actions and provider callbacks serialize on it.
func withLockedTransaction(reference string, fn func(tx *gorm.DB, transaction *models.Transaction) error) (*models.Transaction, error) {
	var transaction models.Transaction
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Transaction{Reference: reference}).
			First(&transaction).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrNotFound
			}
			return err
		}
		return fn(tx, &transaction)
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func adminStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyValidated):
		return http.StatusConflict
	case errors.Is(err, services.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotRefundable):
		return http.StatusConflict
	case errors.Is(err, services.ErrReasonRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
