package middlewares

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/AfricaChange/AfricaChange/src/db"
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// OptionalAuthMiddleware attaches the user id when a valid bearer
// token is present. Anonymous requests pass through untouched.
func OptionalAuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil || !tkn.Valid {
		return
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil || uid < 1 {
		return
	}
	ctx.Set("id", uint(uid))
	ctx.Set("email", claims.Email)
}

// AdminMiddleware resolves the acting administrator from the bearer
// token. It only sets admin_id on the context; the handlers pass it
// explicitly into the admin engine.
func AdminMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
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

	db := db.GetDb()
	var user models.User
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	db.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)

	if uint(uid) != user.ID || user.ID < 1 {
		ctx.AbortWithStatus(401)
		return
	}
	if !user.IsAdmin {
		ctx.AbortWithStatus(403)
		return
	}
	ctx.Set("email", user.Email)
	ctx.Set("admin_id", user.ID)
}
