package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/apicalbio/shopify_backend/configs"
	"github.com/apicalbio/shopify_backend/models"
)

// ShopifyClient talks to the Shopify Admin REST API. It is an explicit
// handle created with NewShopifyClient and released with Close; nothing
// in this package keeps an ambient session.
type ShopifyClient struct {
	shopName    string
	apiVersion  string
	accessToken string
	httpClient  *http.Client
}

type ShopifyPaymentSession struct {
	PaymentURL     string `json:"payment_url"`
	ShopifyOrderID string `json:"shopify_order_id"`
}

func NewShopifyClient() (*ShopifyClient, error) {
	shopName := config.Config("SHOPIFY_SHOP_NAME")
	accessToken := config.Config("SHOPIFY_ACCESS_TOKEN")
	if shopName == "" || accessToken == "" {
		return nil, fmt.Errorf("shopify client not configured: SHOPIFY_SHOP_NAME and SHOPIFY_ACCESS_TOKEN are required")
	}

	return &ShopifyClient{
		shopName:    shopName,
		apiVersion:  config.ConfigOr("SHOPIFY_API_VERSION", "2024-01"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Close releases the client's idle connections.
func (c *ShopifyClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *ShopifyClient) endpoint(path string) string {
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/%s", c.shopName, c.apiVersion, path)
}

func (c *ShopifyClient) do(method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.endpoint(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify API returned %s: %s", resp.Status, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreatePaymentSession creates the order on Shopify and returns the
// hosted payment URL for the customer.
func (c *ShopifyClient) CreatePaymentSession(order *models.Order) (*ShopifyPaymentSession, error) {
	customer, err := c.findOrCreateCustomer(order)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"order": map[string]any{
			"email":      order.CustomerEmail,
			"reference":  order.OrderReference,
			"currency":   order.Currency,
			"line_items": formatLineItems(order),
			"customer":   customer,
		},
	}

	var created struct {
		Order struct {
			ID              int64  `json:"id"`
			OrderStatusURL  string `json:"order_status_url"`
			FinancialStatus string `json:"financial_status"`
		} `json:"order"`
	}
	if err := c.do(http.MethodPost, "orders.json", payload, &created); err != nil {
		return nil, err
	}

	return &ShopifyPaymentSession{
		PaymentURL:     created.Order.OrderStatusURL,
		ShopifyOrderID: fmt.Sprintf("%d", created.Order.ID),
	}, nil
}

// GetOrderStatus returns the financial_status of a Shopify order.
func (c *ShopifyClient) GetOrderStatus(shopifyOrderID string) (string, error) {
	var result struct {
		Order struct {
			FinancialStatus string `json:"financial_status"`
		} `json:"order"`
	}
	if err := c.do(http.MethodGet, fmt.Sprintf("orders/%s.json", shopifyOrderID), nil, &result); err != nil {
		return "", err
	}
	return result.Order.FinancialStatus, nil
}

func formatLineItems(order *models.Order) []map[string]any {
	var data struct {
		Items []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
			Price    string `json:"price"`
		} `json:"items"`
	}
	if len(order.OrderData) > 0 {
		_ = json.Unmarshal(order.OrderData, &data)
	}

	items := make([]map[string]any, 0, len(data.Items))
	for _, item := range data.Items {
		name := item.Name
		if name == "" {
			name = "Unknown Item"
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		price := item.Price
		if price == "" {
			price = "0.00"
		}
		items = append(items, map[string]any{
			"title":             name,
			"quantity":          quantity,
			"price":             price,
			"requires_shipping": false,
			"taxable":           false,
		})
	}
	return items
}

func (c *ShopifyClient) findOrCreateCustomer(order *models.Order) (map[string]any, error) {
	var search struct {
		Customers []struct {
			ID int64 `json:"id"`
		} `json:"customers"`
	}
	err := c.do(http.MethodGet, fmt.Sprintf("customers/search.json?query=email:%s", order.CustomerEmail), nil, &search)
	if err == nil && len(search.Customers) > 0 {
		return map[string]any{"id": search.Customers[0].ID}, nil
	}

	firstName := order.CustomerName
	lastName := ""
	if parts := strings.Fields(order.CustomerName); len(parts) > 1 {
		firstName = parts[0]
		lastName = strings.Join(parts[1:], " ")
	}

	return map[string]any{
		"email":      order.CustomerEmail,
		"first_name": firstName,
		"last_name":  lastName,
	}, nil
}
