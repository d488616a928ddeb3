package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/gateway"
	"github.com/alimrdn/solarportal/internal/models"
)

// fakeZarinpal plays the gateway's request/verify endpoints with canned
// responses and counts how often each is hit.
type fakeZarinpal struct {
	srv            *httptest.Server
	requestCalls   int
	verifyCalls    int
	requestBody    string
	verifyBody     string
	lastRequestRaw map[string]interface{}
}

func newFakeZarinpal() *fakeZarinpal {
	f := &fakeZarinpal{
		requestBody: `{"data":{"code":100,"authority":"A1","fee":100},"errors":[]}`,
		verifyBody:  `{"data":{"code":100,"ref_id":201,"card_pan":"5022***"},"errors":[]}`,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/pg/v4/payment/request.json":
			f.requestCalls++
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			f.lastRequestRaw = payload
			fmt.Fprint(w, f.requestBody)
		case "/pg/v4/payment/verify.json":
			f.verifyCalls++
			fmt.Fprint(w, f.verifyBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return f
}

func (f *fakeZarinpal) client() *gateway.Client {
	return gateway.NewClient("merchant-test", f.srv.URL)
}

func (f *fakeZarinpal) close() {
	f.srv.Close()
}

func seedPayment(t *testing.T, db *gorm.DB, user models.User, authority, status string) models.Payment {
	t.Helper()

	payment := models.Payment{
		Amount:      300000,
		Description: "bill",
		Authority:   authority,
		Status:      status,
		UserID:      user.ID,
	}
	require.NoError(t, db.Create(&payment).Error)
	return payment
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestPaymentSuccess(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/request", token,
		`{"amount":300000,"description":"bill"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "A1", body["authority"])
	assert.Contains(t, body["paymentUrl"], "/pg/StartPay/A1")

	var payment models.Payment
	require.NoError(t, db.Where("authority = ?", "A1").First(&payment).Error)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, int64(300000), payment.Amount)
	assert.Equal(t, user.ID, payment.UserID)
}

func TestRequestPaymentValidation(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	token := authToken(t, user)

	cases := []string{
		`{"description":"bill"}`,
		`{"amount":300000}`,
		`{"amount":-5,"description":"bill"}`,
	}
	for _, body := range cases {
		w := doRequest(r, http.MethodPost, "/v1/payments/request", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	assert.Equal(t, 0, fake.requestCalls)
	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRequestPaymentUnauthenticated(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())

	w := doRequest(r, http.MethodPost, "/v1/payments/request", "",
		`{"amount":300000,"description":"bill"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestPaymentGatewayFailureLeavesNoRecord(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	fake.requestBody = `{"data":[],"errors":{"code":-9,"message":"The input params invalid."}}`
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/request", token,
		`{"amount":300000,"description":"bill"}`)

	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "The input params invalid.")

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRequestPaymentFallsBackToProfilePhone(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Update("phone", "09120000000").Error)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/request", token,
		`{"amount":300000,"description":"bill"}`)
	require.Equal(t, http.StatusOK, w.Code)

	metadata, ok := fake.lastRequestRaw["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "09120000000", metadata["mobile"])
	assert.Equal(t, "buyer@example.com", metadata["email"])
}

func TestVerifyPaymentCancelledSkipsGateway(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	seedPayment(t, db, user, "A1", models.PaymentStatusPending)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/verify", token,
		`{"authority":"A1","status":"NOK"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, models.PaymentStatusCancelled, body["status"])
	assert.Equal(t, 0, fake.verifyCalls)

	var payment models.Payment
	require.NoError(t, db.Where("authority = ?", "A1").First(&payment).Error)
	assert.Equal(t, models.PaymentStatusCancelled, payment.Status)
}

func TestVerifyPaymentAlreadyVerifiedCode(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	fake.verifyBody = `{"data":{"code":101,"ref_id":"REF9"},"errors":[]}`
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	seedPayment(t, db, user, "A1", models.PaymentStatusPending)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/verify", token,
		`{"authority":"A1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, models.PaymentStatusSuccess, body["status"])
	assert.Equal(t, "REF9", body["ref_id"])
	assert.Equal(t, float64(300000), body["amount"])
	assert.Equal(t, "bill", body["description"])

	var payment models.Payment
	require.NoError(t, db.Where("authority = ?", "A1").First(&payment).Error)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
	assert.Equal(t, "REF9", payment.RefID)
}

func TestVerifyPaymentNumericRefID(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	seedPayment(t, db, user, "A1", models.PaymentStatusPending)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/verify", token,
		`{"authority":"A1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "201", body["ref_id"])
}

func TestVerifyPaymentRejectedCode(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	fake.verifyBody = `{"data":{"code":-53},"errors":[]}`
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	seedPayment(t, db, user, "A1", models.PaymentStatusPending)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/verify", token,
		`{"authority":"A1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, models.PaymentStatusFailed, body["status"])

	var payment models.Payment
	require.NoError(t, db.Where("authority = ?", "A1").First(&payment).Error)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestVerifyPaymentCrossUser(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())
	owner := createTestUser(t, db, "owner@example.com", models.RoleUser)
	other := createTestUser(t, db, "other@example.com", models.RoleUser)
	seedPayment(t, db, owner, "A1", models.PaymentStatusPending)
	token := authToken(t, other)

	w := doRequest(r, http.MethodPost, "/v1/payments/verify", token,
		`{"authority":"A1"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, fake.verifyCalls)

	var payment models.Payment
	require.NoError(t, db.Where("authority = ?", "A1").First(&payment).Error)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestVerifyPaymentMissingAuthority(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/verify", token, `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "error", body["status"])
}

// A second verification of a settled payment answers from local state and
// never re-opens the record or re-contacts the gateway.
func TestVerifyPaymentTerminalRecordIsSealed(t *testing.T) {
	db := setupTestDB(t)
	fake := newFakeZarinpal()
	defer fake.close()
	fake.verifyBody = `{"data":{"code":101,"ref_id":"REF9"},"errors":[]}`
	r := setupRouter(db, fake.client())
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	seedPayment(t, db, user, "A1", models.PaymentStatusPending)
	token := authToken(t, user)

	w := doRequest(r, http.MethodPost, "/v1/payments/verify", token, `{"authority":"A1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, fake.verifyCalls)

	// Replay, this time with the cancellation flag. The stored success
	// must win.
	w = doRequest(r, http.MethodPost, "/v1/payments/verify", token,
		`{"authority":"A1","status":"NOK"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, models.PaymentStatusSuccess, body["status"])
	assert.Equal(t, "REF9", body["ref_id"])
	assert.Equal(t, 1, fake.verifyCalls)

	var payment models.Payment
	require.NoError(t, db.Where("authority = ?", "A1").First(&payment).Error)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
}

func TestListPaymentsOwnOnly(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	other := createTestUser(t, db, "other@example.com", models.RoleUser)
	seedPayment(t, db, user, "A1", models.PaymentStatusSuccess)
	seedPayment(t, db, other, "A2", models.PaymentStatusPending)
	token := authToken(t, user)

	w := doRequest(r, http.MethodGet, "/v1/payments", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	payments := body["payments"].([]interface{})
	require.Len(t, payments, 1)
	first := payments[0].(map[string]interface{})
	assert.Equal(t, "A1", first["authority"])
}

func TestPaymentReceiptQR(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	success := seedPayment(t, db, user, "A1", models.PaymentStatusSuccess)
	pending := seedPayment(t, db, user, "A2", models.PaymentStatusPending)
	token := authToken(t, user)

	w := doRequest(r, http.MethodGet, "/v1/payments/"+success.ID.String()+"/receipt", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doRequest(r, http.MethodGet, "/v1/payments/"+pending.ID.String()+"/receipt", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
