package main

import (
	"log"
	"net/http"

	"rbs/src/controllers"
	"rbs/src/db"
	"rbs/src/middlewares"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
)

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.Use(middlewares.RequireRoles(types.ROLE_ADMIN))
	g.
		POST("/auth/approve-owner/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			status, err := controllers.AuthApproveOwner(ctx, params.ID)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"message": "Owner approved"})
		}).
		GET("/admin/users", func(ctx *gin.Context) {
			gdb := db.GetDb()
			var users []models.User
			if err := gdb.
				Order("created_at desc").
				Find(&users).
				Error; err != nil {
				log.Printf("Error retrieving Users: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users})
		}).
		GET("/admin/owners/pending", func(ctx *gin.Context) {
			gdb := db.GetDb()
			var owners []models.User
			if err := gdb.
				Where("role = ? AND is_approved = ?", types.ROLE_OWNER, false).
				Order("created_at asc").
				Find(&owners).
				Error; err != nil {
				log.Printf("Error retrieving Owners: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": owners})
		})
	return g
}
