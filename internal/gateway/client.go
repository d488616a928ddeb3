package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Zarinpal v4 result codes. 100 is a fresh success on both request and
// verify; 101 means the transaction was already verified.
const (
	CodeSuccess         = 100
	CodeAlreadyVerified = 101
)

type Client struct {
	merchantID string
	baseURL    string
	httpClient *http.Client
}

func NewClient(merchantID, baseURL string) *Client {
	return &Client{
		merchantID: merchantID,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type RequestResult struct {
	Authority  string
	PaymentURL string
}

type VerifyResult struct {
	Code  int
	RefID string
}

type requestPayload struct {
	MerchantID  string          `json:"merchant_id"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	CallbackURL string          `json:"callback_url"`
	Metadata    requestMetadata `json:"metadata"`
}

type requestMetadata struct {
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

type verifyPayload struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

// envelope is the outer shape of every Zarinpal response. Data is an object
// on success and an empty array on failure; Errors varies between a string,
// an object and an array, so both stay raw until probed.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type requestData struct {
	Code      int    `json:"code"`
	Authority string `json:"authority"`
}

type verifyData struct {
	Code  int             `json:"code"`
	RefID json.RawMessage `json:"ref_id"`
}

// refIDString renders the gateway reference id, which arrives either as a
// JSON number or as a string.
func refIDString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return n.String()
	}
	return string(trimmed)
}

// RequestPayment asks the gateway for a new payment authority and returns
// it together with the redirect URL the customer must be sent to.
func (c *Client) RequestPayment(ctx context.Context, amount int64, description, callbackURL, mobile, email string) (*RequestResult, error) {
	payload := requestPayload{
		MerchantID:  c.merchantID,
		Amount:      amount,
		Description: description,
		CallbackURL: callbackURL,
		Metadata: requestMetadata{
			Mobile: mobile,
			Email:  email,
		},
	}

	var env envelope
	if err := c.post(ctx, "/pg/v4/payment/request.json", payload, &env); err != nil {
		return nil, err
	}

	var data requestData
	if err := decodeData(env.Data, &data); err != nil {
		return nil, fmt.Errorf("gateway error: %s", normalizeErrors(env.Errors))
	}

	if data.Code != CodeSuccess {
		return nil, fmt.Errorf("gateway error: %s", normalizeErrors(env.Errors))
	}
	if data.Authority == "" {
		return nil, fmt.Errorf("gateway returned no authority")
	}

	return &RequestResult{
		Authority:  data.Authority,
		PaymentURL: fmt.Sprintf("%s/pg/StartPay/%s", c.baseURL, data.Authority),
	}, nil
}

// VerifyPayment confirms a payment attempt with the gateway. A non-success
// code is not an error here; callers map the code to a final status.
func (c *Client) VerifyPayment(ctx context.Context, amount int64, authority string) (*VerifyResult, error) {
	payload := verifyPayload{
		MerchantID: c.merchantID,
		Amount:     amount,
		Authority:  authority,
	}

	var env envelope
	if err := c.post(ctx, "/pg/v4/payment/verify.json", payload, &env); err != nil {
		return nil, err
	}

	var data verifyData
	if err := decodeData(env.Data, &data); err != nil {
		// No data object at all means the gateway rejected the call
		// outright rather than answering with a result code.
		return &VerifyResult{Code: -1}, nil
	}

	return &VerifyResult{
		Code:  data.Code,
		RefID: refIDString(data.RefID),
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out *envelope) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return nil
}

// decodeData unmarshals the data field when it is a JSON object. Zarinpal
// sends an empty array instead of an object on failures.
func decodeData(raw json.RawMessage, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("no data object in gateway response")
	}
	return json.Unmarshal(trimmed, out)
}
