package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"
	"time"

	"rbs/src/lib"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

func GenerateJWT(email string, userId uint, role types.Role) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userId), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), 10)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashed string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// NewOTPCode draws a 6-digit one-time code from crypto/rand.
func NewOTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		log.Printf("Error generating OTP code: %s\n", err.Error())
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

const otpTTL = 10 * time.Minute

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

// StoreOTP parks the code in redis under the user's email; the TTL is the
// verification deadline.
func StoreOTP(email string, code string) error {
	rd := lib.GetRedisClient()
	return rd.Set(context.Background(), otpKey(email), code, otpTTL).Err()
}

// RedeemOTP compares and consumes the stored code. A matched code is
// deleted so it cannot be replayed.
func RedeemOTP(email string, code string) bool {
	rd := lib.GetRedisClient()
	stored, err := rd.Get(context.Background(), otpKey(email)).Result()
	if err != nil || stored != code {
		return false
	}
	rd.Del(context.Background(), otpKey(email))
	return true
}

func SendOTPEmail(email string, code string) {
	err := lib.SendMail(&lib.SendMailInput{
		To:      email,
		Subject: "Your verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
	})
	if err != nil {
		log.Printf("Error sending OTP email to %s: %s\n", email, err.Error())
	}
}

func SendPasswordResetEmail(email string, code string) {
	err := lib.SendMail(&lib.SendMailInput{
		To:      email,
		Subject: "Password reset",
		Body:    fmt.Sprintf("Use code %s to reset your password. It expires in 10 minutes.", code),
	})
	if err != nil {
		log.Printf("Error sending reset email to %s: %s\n", email, err.Error())
	}
}

// SendBookingStatusEmail tells the customer about a lifecycle change.
// Best effort: failures are logged and never fail the transition.
func SendBookingStatusEmail(user *models.User, booking *models.Booking) {
	if user == nil || user.Email == "" {
		return
	}
	err := lib.SendMail(&lib.SendMailInput{
		To:      user.Email,
		Subject: fmt.Sprintf("Booking %s %s", booking.Reference, booking.Status),
		Body:    fmt.Sprintf("Hi %s, your booking %s is now %s.", user.Name, booking.Reference, booking.Status),
	})
	if err != nil {
		log.Printf("Error sending status email for booking [%d]: %s\n", booking.ID, err.Error())
	}
}
