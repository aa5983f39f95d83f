package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	config "github.com/apicalbio/shopify_backend/configs"
	"github.com/apicalbio/shopify_backend/models"
	"github.com/shopspring/decimal"
)

// PaymentError wraps any failure reported by the payment processor so
// callers can distinguish gateway rejections from local validation.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment processor error: %s", e.Message)
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func stripeRequest(method, path string, form url.Values) ([]byte, error) {
	apiBase := config.ConfigOr("STRIPE_API_BASE_URL", "https://api.stripe.com")
	secretKey := config.Config("STRIPE_SECRET_KEY")

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", apiBase, path), body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &PaymentError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var stripeErr stripeErrorResponse
		if json.Unmarshal(respBody, &stripeErr) == nil && stripeErr.Error.Message != "" {
			return nil, &PaymentError{Message: stripeErr.Error.Message}
		}
		return nil, &PaymentError{Message: fmt.Sprintf("unexpected status %s", resp.Status)}
	}

	return respBody, nil
}

// minorUnits converts a decimal major-unit amount into the integer
// minor-unit string Stripe expects.
func minorUnits(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).StringFixed(0)
}

// CreatePaymentIntent opens a Stripe intent for the full order amount.
// Stripe takes amounts in the currency's minor unit.
func CreatePaymentIntent(order *models.Order) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", minorUnits(order.Amount))
	form.Set("currency", strings.ToLower(order.Currency))
	form.Set("metadata[order_reference]", order.OrderReference)

	respBody, err := stripeRequest(http.MethodPost, "/v1/payment_intents", form)
	if err != nil {
		return nil, err
	}

	var intent PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ConfirmPayment reports whether the intent has succeeded on Stripe's end.
func ConfirmPayment(paymentIntentID string) (bool, error) {
	respBody, err := stripeRequest(http.MethodGet, fmt.Sprintf("/v1/payment_intents/%s", paymentIntentID), nil)
	if err != nil {
		return false, err
	}

	var intent PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return false, err
	}
	return intent.Status == "succeeded", nil
}

// RefundIntent asks Stripe to refund part or all of a captured intent.
func RefundIntent(paymentIntentID string, amount decimal.Decimal) error {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	if amount.IsPositive() {
		form.Set("amount", minorUnits(amount))
	}

	_, err := stripeRequest(http.MethodPost, "/v1/refunds", form)
	return err
}
