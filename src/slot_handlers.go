package main

import (
	"errors"
	"net/http"
	"time"

	"rbs/src/common"
	"rbs/src/db"
	"rbs/src/middlewares"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func publicSlotHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/restaurants/:id/slots", func(ctx *gin.Context) {
			var params types.RestaurantURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.SlotsQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var date *time.Time
			if query.Date != "" {
				d, err := common.ParseDate(query.Date)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				date = &d
			}
			gdb := db.GetDb()
			var restaurant models.Restaurant
			if err := gdb.
				Where(&models.Restaurant{ID: params.RestaurantID}).
				First(&restaurant).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": types.ErrNotFound.Error()})
				return
			}
			slots, err := common.ListSlots(gdb, restaurant.ID, date)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slots})
		})
	return g
}

func slotHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	ownerOrAdmin := middlewares.RequireRoles(types.ROLE_OWNER, types.ROLE_ADMIN)
	g.
		POST("/restaurants/:id/slots", ownerOrAdmin, func(ctx *gin.Context) {
			var params types.RestaurantURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateSlotsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			date, err := common.ParseDate(body.Date)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			var created []models.Slot
			var skipped int
			err = gdb.Transaction(func(tx *gorm.DB) error {
				var restaurant models.Restaurant
				if err := tx.
					Where(&models.Restaurant{ID: params.RestaurantID}).
					First(&restaurant).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrNotFound
					}
					return err
				}
				if !common.CanAct(p, restaurant.OwnerID, types.ROLE_OWNER) {
					return types.ErrForbidden
				}
				created, skipped, err = common.EnsureSlots(tx, &restaurant, date)
				return err
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"data":         created,
				"created":      len(created),
				"skippedCount": skipped,
			})
		}).
		DELETE("/restaurants/:id/slots", ownerOrAdmin, func(ctx *gin.Context) {
			var params types.RestaurantURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.SlotsQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var date *time.Time
			if query.Date != "" {
				d, err := common.ParseDate(query.Date)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				date = &d
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			var deleted int64
			err := gdb.Transaction(func(tx *gorm.DB) error {
				var restaurant models.Restaurant
				if err := tx.
					Where(&models.Restaurant{ID: params.RestaurantID}).
					First(&restaurant).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrNotFound
					}
					return err
				}
				if !common.CanAct(p, restaurant.OwnerID, types.ROLE_OWNER) {
					return types.ErrForbidden
				}
				var err error
				deleted, err = common.DeleteUnbookedSlots(tx, restaurant.ID, date)
				return err
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
		})
	return g
}
