package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"rbs/src/db"
	"rbs/src/middlewares"
	"rbs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	mockdb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: mockdb,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

// stubAuth plays the part of AuthMiddleware with a fixed identity so
// handler tests skip token parsing and the user lookup.
func stubAuth(id uint, role types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("id", id)
		ctx.Set("email", "someone@example.com")
		ctx.Set("role", string(role))
	}
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()
}

func (s *TestSuite) SetupTest() {
	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	publicRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/restaurants", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestAuthRequired() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.AuthMiddleware)
	bookingHandlers(apiv1)

	s.Run("Should reject a request without a token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should reject a malformed token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should reject a bare Bearer header", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should reject a Bearer header with no token after the scheme", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer ")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})
}

func (s *TestSuite) TestGuestAuthValidation() {
	router := setupRouter()
	guestAuthRoutes(router)

	s.Run("Should return 400 for an incomplete registration", func() {
		jbody := map[string]any{
			"email": "someone@example.com",
		}
		sbody, _ := json.Marshal(&jbody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		errMsg := gjson.Get(string(rbytes), "error").String()
		assert.NotEmpty(s.T(), errMsg)
	})

	s.Run("Should return 400 for an unknown role", func() {
		jbody := map[string]any{
			"email":    "someone@example.com",
			"password": "s3cret-pass",
			"name":     "Test User",
			"role":     "superuser",
		}
		sbody, _ := json.Marshal(&jbody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 403 for admin bootstrap without the secret", func() {
		jbody := map[string]any{
			"email":    "admin@example.com",
			"password": "s3cret-pass",
			"name":     "Admin",
		}
		sbody, _ := json.Marshal(&jbody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/auth/create-admin", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})
}

func (s *TestSuite) TestRestaurantValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(stubAuth(7, types.ROLE_OWNER))
	restaurantHandlers(apiv1)

	s.Run("Should return 400 when closing is before opening", func() {
		body := types.CreateRestaurantRequestBody{
			Name:         "The Fork",
			Address:      "1 Main St",
			OpeningHours: "22:00",
			ClosingHours: "09:00",
			SlotDuration: 60,
		}
		rbytes, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/restaurants", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 400 for an unsupported duration", func() {
		body := types.CreateRestaurantRequestBody{
			Name:         "The Fork",
			Address:      "1 Main St",
			OpeningHours: "09:00",
			ClosingHours: "22:00",
			SlotDuration: 45,
		}
		rbytes, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/restaurants", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestPublicRestaurantList() {
	router := setupRouter()
	publicRoutes(router)

	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "restaurants"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "restaurants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/restaurants", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingConflict() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(stubAuth(2, types.ROLE_CUSTOMER))
	bookingHandlers(apiv1)

	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "restaurants"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "owner_id", "opening_hours", "closing_hours", "slot_duration"}).
			AddRow(1, 7, "09:00", "22:00", 60))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "slots"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "restaurant_id", "date", "time", "is_booked"}).
			AddRow(5, 1, time.Now(), "10:00", true))
	s.Mock.ExpectExec(`UPDATE "slots"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectRollback()

	body := types.CreateBookingRequestBody{
		RestaurantID: 1,
		SlotID:       5,
		PartySize:    2,
	}
	rbytes, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 409, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(resbytes), "error").String()
	assert.Equal(s.T(), types.ErrSlotConflict.Error(), errMsg)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingOutOfHours() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(stubAuth(2, types.ROLE_CUSTOMER))
	bookingHandlers(apiv1)

	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "restaurants"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "owner_id", "opening_hours", "closing_hours", "slot_duration"}).
			AddRow(1, 7, "12:00", "14:00", 60))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "slots"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "restaurant_id", "date", "time", "is_booked"}).
			AddRow(5, 1, time.Now(), "18:00", false))
	s.Mock.ExpectRollback()

	body := types.CreateBookingRequestBody{
		RestaurantID: 1,
		SlotID:       5,
		PartySize:    2,
	}
	rbytes, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(resbytes), "error").String()
	assert.Equal(s.T(), types.ErrOutOfHours.Error(), errMsg)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestSlotListUnknownRestaurant() {
	router := setupRouter()
	publicRoutes(router)

	s.Mock.ExpectQuery(`SELECT (.+) FROM "restaurants"`).
		WillReturnError(gorm.ErrRecordNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/restaurants/12/slots", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code)
}

func (s *TestSuite) TestSlotListBadDate() {
	router := setupRouter()
	publicRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/restaurants/12/slots?date=%s", "28-08-2026"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
