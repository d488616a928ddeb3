package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePriceTariffs(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)

	cases := []struct {
		customerType string
		consumption  int64
		wantRate     float64
		wantTotal    float64
	}{
		{"residential", 300, 1500, 450000},
		{"commercial", 300, 2000, 600000},
		{"industrial", 1000, 1800, 1800000},
	}

	for _, tc := range cases {
		t.Run(tc.customerType, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/v1/calculate", "",
				`{"consumption_kwh":`+itoa(tc.consumption)+`,"customer_type":"`+tc.customerType+`"}`)
			require.Equal(t, http.StatusOK, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tc.wantRate, body["rate"])
			assert.Equal(t, tc.wantTotal, body["total_price"])
		})
	}
}

func TestCalculatePriceRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)

	cases := []string{
		`{"consumption_kwh":300,"customer_type":"agricultural"}`,
		`{"customer_type":"residential"}`,
		`{"consumption_kwh":-10,"customer_type":"residential"}`,
	}
	for _, body := range cases {
		w := doRequest(r, http.MethodPost, "/v1/calculate", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
