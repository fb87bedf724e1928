package middlewares

import (
	"log"
	"os"
	"strconv"
	"strings"

	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	_, reqToken, found := strings.Cut(bearerToken, " ")
	if !found || reqToken == "" {
		ctx.AbortWithStatus(401)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{ID: uint(uid)}).
		First(&user).
		Error; err != nil {
		ctx.AbortWithStatus(401)
		return
	}
	if user.Role == types.ROLE_OWNER && !user.IsApproved {
		ctx.AbortWithStatus(401)
		return
	}

	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("role", string(user.Role))
}

// PrincipalFromContext rebuilds the authenticated identity the middleware
// stored on the request.
func PrincipalFromContext(ctx *gin.Context) types.Principal {
	return types.Principal{
		ID:   ctx.GetUint("id"),
		Role: types.Role(ctx.GetString("role")),
	}
}
