package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

	"github.com/AfricaChange/AfricaChange/src/db"
	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
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
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("phone", phoneValidatorFunc)
	}

	os.Setenv("ORANGE_CLIENT_ID", "client")
	os.Setenv("ORANGE_CLIENT_SECRET", "secret")
	os.Setenv("ORANGE_MERCHANT_KEY", "merchant")
	os.Setenv("ORANGE_WEBHOOK_SECRET", "whsec")
	os.Setenv("WAVE_API_KEY", "wavekey")
	os.Setenv("WAVE_WEBHOOK_SECRET", "wavesec")

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) newRouter() *gin.Engine {
	router := setupRouter()
	webhookRoutes(router)
	public := apiv1Group(router)
	conversionHandlers(public)
	paymentHandlers(public)
	adminHandlers(apiv1Group(router))
	return router
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestWebhookRejectsUnknownOrigin() {
	os.Setenv("API_ENV", "production")
	defer os.Setenv("API_ENV", "test")

	router := s.newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhook/orange", strings.NewReader(`{}`))
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestWebhookRejectsBadSignature() {
	os.Setenv("API_ENV", "production")
	defer os.Setenv("API_ENV", "test")

	router := s.newRouter()
	body := []byte(`{"order_id":"ref-1","status":"SUCCESS"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhook/orange", strings.NewReader(string(body)))
	req.Header.Set("X-Forwarded-For", "196.201.200.5")
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 403, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/webhook/orange", strings.NewReader(string(body)))
	req.Header.Set("X-Forwarded-For", "196.201.200.5")
	req.Header.Set("X-Orange-Signature", sign("wrong", body))
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestWebhookRejectsUnknownStatus() {
	os.Setenv("API_ENV", "production")
	defer os.Setenv("API_ENV", "test")

	router := s.newRouter()
	body := []byte(`{"order_id":"ref-1","status":"SOMETHING_ELSE"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhook/orange", strings.NewReader(string(body)))
	req.Header.Set("X-Forwarded-For", "196.201.200.5")
	req.Header.Set("X-Orange-Signature", sign("whsec", body))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(rbytes), "error").String()
	assert.Contains(s.T(), errMsg, "unrecognized provider status")
}

func (s *TestSuite) TestWebhookUnknownTransaction() {
	os.Setenv("API_ENV", "production")
	defer os.Setenv("API_ENV", "test")

	router := s.newRouter()
	body := []byte(`{"order_id":"ref-missing","status":"SUCCESS"}`)

	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.Mock.ExpectRollback()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhook/orange", strings.NewReader(string(body)))
	req.Header.Set("X-Forwarded-For", "196.201.200.5")
	req.Header.Set("X-Orange-Signature", sign("whsec", body))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestWebhookReplayAnswers200() {
	os.Setenv("API_ENV", "production")
	defer os.Setenv("API_ENV", "test")

	router := s.newRouter()
	body := []byte(`{"order_id":"ref-1","status":"SUCCESS"}`)

	// The event row already exists: the redelivered webhook must get an
	// idempotent 200 and trigger no financial effects.
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "amount", "status", "reference", "provider", "ip_address", "created_at", "updated_at"}).
			AddRow(int64(1), "paiement", 1000.0, "en_attente", "ref-1", "Orange Money", "196.201.200.5", time.Now().UTC(), time.Now().UTC()))
	s.Mock.ExpectExec(`SAVEPOINT payment_event`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectQuery(`INSERT INTO "payment_events"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	s.Mock.ExpectExec(`ROLLBACK TO SAVEPOINT payment_event`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectCommit()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhook/orange", strings.NewReader(string(body)))
	req.Header.Set("X-Forwarded-For", "196.201.200.5")
	req.Header.Set("X-Orange-Signature", sign("whsec", body))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)
	assert.Equal(s.T(), "ref-1", gjson.Get(sjson, "reference").String())
	assert.Equal(s.T(), "en_attente", gjson.Get(sjson, "status").String())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestPaymentUnknownProvider() {
	router := s.newRouter()

	jbody := map[string]any{"reference": "CVT-AAAAAA", "phone": "+221770000000"}
	sbody, _ := json.Marshal(&jbody)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/payments/mtn", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(rbytes), "error").String()
	assert.Contains(s.T(), errMsg, "unsupported payment provider")
}

func (s *TestSuite) TestPaymentValidation() {
	router := s.newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/payments/orange", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestConvertValidation() {
	router := s.newRouter()

	jbody := map[string]any{"amount": -5}
	sbody, _ := json.Marshal(&jbody)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/convert", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestQuote() {
	router := s.newRouter()

	s.Mock.ExpectQuery(`SELECT (.+) FROM "rates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_currency", "to_currency", "rate"}).
			AddRow(int64(1), "EUR", "XOF", 655.957))

	jbody := types.QuoteRequestBody{Amount: 100, FromCurrency: "EUR", ToCurrency: "XOF"}
	sbody, _ := json.Marshal(&jbody)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/convert/quote", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)
	assert.Equal(s.T(), 655.957, gjson.Get(sjson, "rate").Float())
	assert.Equal(s.T(), 65595.7, gjson.Get(sjson, "amount_converted").Float())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestAdminRequiresAuth() {
	router := s.newRouter()

	for _, action := range []string{"validate", "block", "refund"} {
		w := httptest.NewRecorder()
		target := fmt.Sprintf("/api/v1/admin/transactions/ref-1/%s", action)
		req, _ := http.NewRequest("POST", target, strings.NewReader(`{"reason":"x","amount":10}`))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	}
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
