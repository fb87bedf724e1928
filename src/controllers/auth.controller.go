package controllers

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"
	"rbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthRegister creates an account in the requested role. Customers are
// usable after OTP verification; owners additionally wait for admin
// approval before they can authenticate.
func AuthRegister(ctx *gin.Context) (*models.User, int, error) {
	var body types.RegisterRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	gdb := db.GetDb()
	var user models.User
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.User{}).
			Where("lower(email) = lower(?)", body.Email).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return types.ErrDuplicate
		}
		hashed, err := utils.HashPassword(body.Password)
		if err != nil {
			return err
		}
		user = models.User{
			Email:      body.Email,
			Password:   hashed,
			Name:       body.Name,
			Role:       body.Role,
			IsApproved: body.Role != types.ROLE_OWNER,
		}
		if err := tx.Create(&user).Error; err != nil {
			return types.FromStore(err)
		}
		return nil
	})
	if err != nil {
		status := types.ErrorStatus(err)
		return nil, status, err
	}

	code := utils.NewOTPCode()
	if err := utils.StoreOTP(user.Email, code); err != nil {
		log.Printf("Error storing OTP for %s: %s\n", user.Email, err.Error())
		return nil, http.StatusInternalServerError, types.ErrInternal
	}
	go utils.SendOTPEmail(user.Email, code)

	return &user, http.StatusCreated, nil
}

// AuthVerifyOtp redeems the emailed code and stamps the account verified.
func AuthVerifyOtp(ctx *gin.Context) (*string, int, error) {
	var body types.VerifyOtpRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if !utils.RedeemOTP(body.Email, body.Code) {
		err := errors.New("invalid or expired code")
		return nil, http.StatusBadRequest, err
	}
	gdb := db.GetDb()
	var user models.User
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("lower(email) = lower(?)", body.Email).
			First(&user).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		now := time.Now()
		if err := tx.
			Model(&models.User{}).
			Where(&models.User{ID: user.ID}).
			Update("verified_at", now).
			Error; err != nil {
			return err
		}
		user.VerifiedAt = &now
		return nil
	})
	if err != nil {
		return nil, types.ErrorStatus(err), err
	}
	token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		log.Printf("Error generating token for user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, types.ErrInternal
	}
	return &token, http.StatusOK, nil
}

// AuthLogin checks the credential and issues a token. Invalid email and
// invalid password collapse into one message on purpose.
func AuthLogin(ctx *gin.Context) (*string, int, error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	invalid := errors.New("invalid credentials")
	gdb := db.GetDb()
	var user models.User
	if err := gdb.
		Where("lower(email) = lower(?)", body.Email).
		First(&user).
		Error; err != nil {
		return nil, http.StatusBadRequest, invalid
	}
	if !utils.CheckPassword(user.Password, body.Password) {
		return nil, http.StatusBadRequest, invalid
	}
	if user.VerifiedAt == nil {
		return nil, http.StatusBadRequest, errors.New("account is not verified")
	}
	if user.Role == types.ROLE_OWNER && !user.IsApproved {
		return nil, http.StatusForbidden, errors.New("owner account is pending approval")
	}
	token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		log.Printf("Error generating token for user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, types.ErrInternal
	}
	return &token, http.StatusOK, nil
}

// AuthResetPassword mails a one-time code. The response does not reveal
// whether the address exists.
func AuthResetPassword(ctx *gin.Context) (int, error) {
	var body types.ResetPasswordRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return http.StatusBadRequest, err
	}
	gdb := db.GetDb()
	var user models.User
	if err := gdb.
		Where("lower(email) = lower(?)", body.Email).
		First(&user).
		Error; err != nil {
		return http.StatusOK, nil
	}
	code := utils.NewOTPCode()
	if err := utils.StoreOTP(user.Email, code); err != nil {
		log.Printf("Error storing reset code for %s: %s\n", user.Email, err.Error())
		return http.StatusInternalServerError, types.ErrInternal
	}
	go utils.SendPasswordResetEmail(user.Email, code)
	return http.StatusOK, nil
}

// AuthCreateAdmin bootstraps an admin account. Guarded by the deployment
// secret carried in the x-secret header.
func AuthCreateAdmin(ctx *gin.Context) (*models.User, int, error) {
	secret := os.Getenv("ADMIN_BOOTSTRAP_SECRET")
	provided := ctx.GetHeader("x-secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) != 1 {
		return nil, http.StatusForbidden, types.ErrForbidden
	}
	var body types.CreateAdminRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	gdb := db.GetDb()
	var user models.User
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.User{}).
			Where("lower(email) = lower(?)", body.Email).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return types.ErrDuplicate
		}
		hashed, err := utils.HashPassword(body.Password)
		if err != nil {
			return err
		}
		now := time.Now()
		user = models.User{
			Email:      body.Email,
			Password:   hashed,
			Name:       body.Name,
			Role:       types.ROLE_ADMIN,
			IsApproved: true,
			VerifiedAt: &now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return types.FromStore(err)
		}
		return nil
	})
	if err != nil {
		return nil, types.ErrorStatus(err), err
	}
	return &user, http.StatusCreated, nil
}

// AuthApproveOwner flips an owner account to approved. Admin only; the
// route relies on RequireRoles, re-checked here for callers that skip it.
func AuthApproveOwner(ctx *gin.Context, ownerID uint) (int, error) {
	if types.Role(ctx.GetString("role")) != types.ROLE_ADMIN {
		return http.StatusForbidden, types.ErrForbidden
	}
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.
			Where(&models.User{ID: ownerID, Role: types.ROLE_OWNER}).
			First(&user).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if err := tx.
			Model(&models.User{}).
			Where(&models.User{ID: user.ID}).
			Update("is_approved", true).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return types.ErrorStatus(err), err
	}
	return http.StatusOK, nil
}
