package main

import (
	"errors"
	"log"
	"net/http"

	"rbs/src/common"
	"rbs/src/db"
	"rbs/src/middlewares"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func publicReviewHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/restaurants/:id/reviews", func(ctx *gin.Context) {
			var params types.RestaurantURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
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
			var reviews []models.Review
			if err := gdb.
				Where(&models.Review{RestaurantID: restaurant.ID}).
				Preload("User", func(tx *gorm.DB) *gorm.DB {
					return tx.Select("id", "name")
				}).
				Order("created_at desc").
				Find(&reviews).
				Error; err != nil {
				log.Printf("Error retrieving Reviews: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reviews})
		})
	return g
}

func reviewHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/reviews", middlewares.RequireRoles(types.ROLE_CUSTOMER), func(ctx *gin.Context) {
			var body types.CreateReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			var review models.Review
			err := gdb.Transaction(func(tx *gorm.DB) error {
				var restaurant models.Restaurant
				if err := tx.
					Where(&models.Restaurant{ID: body.RestaurantID}).
					First(&restaurant).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrNotFound
					}
					return err
				}
				review = models.Review{
					UserID:       p.ID,
					RestaurantID: restaurant.ID,
					Rating:       body.Rating,
					Comment:      body.Comment,
					Photos:       types.StringList(body.Photos),
				}
				return tx.Create(&review).Error
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": review})
		}).
		GET("/reviews", func(ctx *gin.Context) {
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			var reviews []models.Review
			if err := gdb.
				Where(&models.Review{UserID: p.ID}).
				Preload("Restaurant", func(tx *gorm.DB) *gorm.DB {
					return tx.Select("id", "name", "slug")
				}).
				Order("created_at desc").
				Find(&reviews).
				Error; err != nil {
				log.Printf("Error retrieving Reviews: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reviews})
		}).
		PUT("/reviews/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			var review models.Review
			err := gdb.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.Review{ID: params.ID}).
					First(&review).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrNotFound
					}
					return err
				}
				if !common.CanAct(p, review.UserID, types.ROLE_CUSTOMER) {
					return types.ErrForbidden
				}
				if body.Rating != nil {
					review.Rating = *body.Rating
				}
				if body.Comment != nil {
					review.Comment = *body.Comment
				}
				if body.Photos != nil {
					review.Photos = types.StringList(*body.Photos)
				}
				return tx.Save(&review).Error
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": review})
		}).
		DELETE("/reviews/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			err := gdb.Transaction(func(tx *gorm.DB) error {
				var review models.Review
				if err := tx.
					Where(&models.Review{ID: params.ID}).
					First(&review).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrNotFound
					}
					return err
				}
				if !common.CanAct(p, review.UserID, types.ROLE_CUSTOMER) {
					return types.ErrForbidden
				}
				return tx.Delete(&review).Error
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
		})
	return g
}
