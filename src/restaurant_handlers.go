package main

import (
	"errors"
	"log"
	"math"
	"net/http"

	"rbs/src/common"
	"rbs/src/db"
	"rbs/src/middlewares"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func publicRestaurantHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/restaurants", func(ctx *gin.Context) {
			var query types.PaginationQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			page := query.Page
			if page == 0 {
				page = 1
			}
			limit := query.Limit
			if limit == 0 {
				limit = 10
			}
			gdb := db.GetDb()
			var restaurants []models.Restaurant
			var total int64
			if err := gdb.Model(&models.Restaurant{}).Count(&total).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			if err := gdb.
				Model(&models.Restaurant{}).
				Preload("Owner", func(tx *gorm.DB) *gorm.DB {
					return tx.Select("id", "name", "email")
				}).
				Order("created_at desc").
				Offset((page - 1) * limit).
				Limit(limit).
				Find(&restaurants).
				Error; err != nil {
				log.Printf("Error retrieving Restaurants: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"data": restaurants,
				"pagination": gin.H{
					"page":  page,
					"limit": limit,
					"total": total,
					"pages": int(math.Ceil(float64(total) / float64(limit))),
				},
			})
		}).
		GET("/restaurants/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			var restaurant models.Restaurant
			if err := gdb.
				Where(&models.Restaurant{ID: params.ID}).
				Preload("Owner", func(tx *gorm.DB) *gorm.DB {
					return tx.Select("id", "name", "email")
				}).
				Preload("Menu").
				First(&restaurant).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": types.ErrNotFound.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": restaurant})
		})
	return g
}

func restaurantHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/restaurants", middlewares.RequireRoles(types.ROLE_OWNER), func(ctx *gin.Context) {
			var body types.CreateRestaurantRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			restaurant := models.Restaurant{
				Name:         body.Name,
				Slug:         slug.Make(body.Name),
				Address:      body.Address,
				Cuisine:      body.Cuisine,
				OwnerID:      p.ID,
				OpeningHours: body.OpeningHours,
				ClosingHours: body.ClosingHours,
				SlotDuration: body.SlotDuration,
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&restaurant).Error; err != nil {
					return types.FromStore(err)
				}
				return nil
			}); err != nil {
				log.Printf("Error creating Restaurant: %s\n", err.Error())
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": restaurant})
		}).
		PUT("/restaurants/:id", middlewares.RequireRoles(types.ROLE_OWNER, types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateRestaurantRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			var restaurant models.Restaurant
			err := gdb.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.Restaurant{ID: params.ID}).
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
				if body.Name != nil {
					restaurant.Name = *body.Name
					restaurant.Slug = slug.Make(*body.Name)
				}
				if body.Address != nil {
					restaurant.Address = *body.Address
				}
				if body.Cuisine != nil {
					restaurant.Cuisine = *body.Cuisine
				}
				if body.OpeningHours != nil {
					restaurant.OpeningHours = *body.OpeningHours
				}
				if body.ClosingHours != nil {
					restaurant.ClosingHours = *body.ClosingHours
				}
				if body.SlotDuration != nil {
					restaurant.SlotDuration = *body.SlotDuration
				}
				// Reject inverted hours before anything is written.
				if _, err := common.TimeGrid(restaurant.OpeningHours, restaurant.ClosingHours, restaurant.SlotDuration); err != nil {
					return err
				}
				return tx.Save(&restaurant).Error
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": restaurant})
		})

	menuHandlers(g)
	return g
}

func menuHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	ownerOrAdmin := middlewares.RequireRoles(types.ROLE_OWNER, types.ROLE_ADMIN)
	loadOwned := func(ctx *gin.Context, tx *gorm.DB, id uint) (*models.Restaurant, error) {
		var restaurant models.Restaurant
		if err := tx.
			Where(&models.Restaurant{ID: id}).
			First(&restaurant).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, types.ErrNotFound
			}
			return nil, err
		}
		p := middlewares.PrincipalFromContext(ctx)
		if !common.CanAct(p, restaurant.OwnerID, types.ROLE_OWNER) {
			return nil, types.ErrForbidden
		}
		return &restaurant, nil
	}
	g.
		POST("/restaurants/:id/menu", ownerOrAdmin, func(ctx *gin.Context) {
			var params types.RestaurantURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.MenuItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			var item models.MenuItem
			err := gdb.Transaction(func(tx *gorm.DB) error {
				restaurant, err := loadOwned(ctx, tx, params.RestaurantID)
				if err != nil {
					return err
				}
				item = models.MenuItem{
					RestaurantID: restaurant.ID,
					Name:         body.Name,
					Description:  body.Description,
					Price:        body.Price,
					Category:     body.Category,
				}
				return tx.Create(&item).Error
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": item})
		}).
		PUT("/restaurants/:id/menu/:itemId", ownerOrAdmin, func(ctx *gin.Context) {
			var params types.MenuItemURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateMenuItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			var item models.MenuItem
			err := gdb.Transaction(func(tx *gorm.DB) error {
				if _, err := loadOwned(ctx, tx, params.RestaurantID); err != nil {
					return err
				}
				if err := tx.
					Where(&models.MenuItem{ID: params.ItemID, RestaurantID: params.RestaurantID}).
					First(&item).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrNotFound
					}
					return err
				}
				if body.Name != nil {
					item.Name = *body.Name
				}
				if body.Description != nil {
					item.Description = *body.Description
				}
				if body.Price != nil {
					item.Price = *body.Price
				}
				if body.Category != nil {
					item.Category = *body.Category
				}
				return tx.Save(&item).Error
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": item})
		}).
		DELETE("/restaurants/:id/menu/:itemId", ownerOrAdmin, func(ctx *gin.Context) {
			var params types.MenuItemURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			err := gdb.Transaction(func(tx *gorm.DB) error {
				if _, err := loadOwned(ctx, tx, params.RestaurantID); err != nil {
					return err
				}
				res := tx.
					Where(&models.MenuItem{ID: params.ItemID, RestaurantID: params.RestaurantID}).
					Delete(&models.MenuItem{})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return types.ErrNotFound
				}
				return nil
			})
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
		})
	return g
}
