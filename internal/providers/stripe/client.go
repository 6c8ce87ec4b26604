package stripe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/consultinvoice/internal/observability/tracing"
)

const pageLimit = 100

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type chargeList struct {
	Data    []charge `json:"data"`
	HasMore bool     `json:"has_more"`
}

type charge struct {
	ID             string         `json:"id"`
	Amount         int64          `json:"amount"`
	Currency       string         `json:"currency"`
	Status         string         `json:"status"`
	Description    string         `json:"description"`
	Created        int64          `json:"created"`
	Customer       customerRef    `json:"customer"`
	BillingDetails billingDetails `json:"billing_details"`
}

type billingDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// customerRef holds either a bare customer id or the expanded object.
type customerRef struct {
	ID    string
	Name  string
	Email string
}

func (c *customerRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = customerRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*c = customerRef{ID: id}
		return nil
	}
	var obj struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = customerRef{ID: obj.ID, Name: obj.Name, Email: obj.Email}
	return nil
}

type stripeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newStripeClient(apiKey, baseURL string) *stripeClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &stripeClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: baseURL,
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

// listCharges reads a single page of charges created inside [from, to].
func (c *stripeClient) listCharges(ctx context.Context, from, to time.Time) (chargeList, error) {
	values := url.Values{}
	values.Set("created[gte]", strconv.FormatInt(from.Unix(), 10))
	values.Set("created[lte]", strconv.FormatInt(to.Unix(), 10))
	values.Set("limit", strconv.Itoa(pageLimit))
	values.Add("expand[]", "data.customer")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/charges?"+values.Encode(), nil)
	if err != nil {
		return chargeList{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	req, span := tracing.StartClientSpan(req, "consultinvoice/stripe", "stripe.charges.list")
	resp, err := c.client.Do(req)
	if err != nil {
		tracing.EndClientSpan(span, 0, err)
		return chargeList{}, err
	}
	defer resp.Body.Close()
	tracing.EndClientSpan(span, resp.StatusCode, nil)

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return chargeList{}, fmt.Errorf("stripe_request_failed: status %d", resp.StatusCode)
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe_request_failed"
		}
		return chargeList{}, errors.New(message)
	}

	var list chargeList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return chargeList{}, fmt.Errorf("decode charges: %w", err)
	}
	return list, nil
}
