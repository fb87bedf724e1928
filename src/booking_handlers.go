package main

import (
	"log"
	"net/http"

	"rbs/src/common"
	"rbs/src/db"
	"rbs/src/middlewares"
	"rbs/src/models"
	"rbs/src/types"
	"rbs/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", middlewares.RequireRoles(types.ROLE_CUSTOMER), func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			booking, err := common.CreateBooking(gdb, p, &body)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			var query types.BookingsQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			q := gdb.
				Model(&models.Booking{}).
				Preload("Slot").
				Preload("Restaurant").
				Order("created_at desc")
			switch p.Role {
			case types.ROLE_ADMIN:
			case types.ROLE_OWNER:
				q = q.
					Joins("JOIN restaurants ON restaurants.id = bookings.restaurant_id").
					Where("restaurants.owner_id = ?", p.ID)
			default:
				q = q.Where(&models.Booking{UserID: p.ID})
			}
			if query.Status != "" {
				q = q.Where("bookings.status = ?", query.Status)
			}
			var bookings []models.Booking
			if err := q.Find(&bookings).Error; err != nil {
				log.Printf("Error retrieving Bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			booking, ok := loadVisibleBooking(ctx)
			if !ok {
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		GET("/bookings/:id/code", func(ctx *gin.Context) {
			booking, ok := loadVisibleBooking(ctx)
			if !ok {
				return
			}
			qrc, err := qrcode.New(booking.Reference)
			if err != nil {
				log.Printf("Error generating code for booking [%d]: %s\n", booking.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.ErrInternal.Error()})
				return
			}
			ctx.Header("Content-Type", "image/jpeg")
			if err := qrc.SaveTo(ctx.Writer); err != nil {
				log.Printf("Error writing code for booking [%d]: %s\n", booking.ID, err.Error())
			}
		}).
		PUT("/bookings/:id", middlewares.RequireRoles(types.ROLE_OWNER, types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			booking, err := common.TransitionBooking(gdb, p, params.ID, body.Status)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			go notifyBookingStatus(booking)
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		DELETE("/bookings/:id", middlewares.RequireRoles(types.ROLE_CUSTOMER, types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			p := middlewares.PrincipalFromContext(ctx)
			gdb := db.GetDb()
			booking, err := common.CancelBooking(gdb, p, params.ID)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": types.ErrorMessage(err)})
				return
			}
			go notifyBookingStatus(booking)
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}

// loadVisibleBooking binds :id, fetches the booking and enforces read
// visibility: the booking's customer, the restaurant's owner, or an admin.
// On failure the response has already been written.
func loadVisibleBooking(ctx *gin.Context) (*models.Booking, bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	p := middlewares.PrincipalFromContext(ctx)
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Where(&models.Booking{ID: params.ID}).
		Preload("Slot").
		Preload("Restaurant").
		First(&booking).
		Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.ErrNotFound.Error()})
		return nil, false
	}
	if !common.CanAct(p, booking.UserID, types.ROLE_CUSTOMER) &&
		!common.CanAct(p, booking.Restaurant.OwnerID, types.ROLE_OWNER) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": types.ErrForbidden.Error()})
		return nil, false
	}
	return &booking, true
}

func notifyBookingStatus(booking *models.Booking) {
	gdb := db.GetDb()
	var user models.User
	if err := gdb.
		Where(&models.User{ID: booking.UserID}).
		First(&user).
		Error; err != nil {
		log.Printf("Error finding customer for booking [%d]: %s\n", booking.ID, err.Error())
		return
	}
	utils.SendBookingStatusEmail(&user, booking)
}
