package gohighlevel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/consultinvoice/internal/observability/tracing"
)

const tracerName = "consultinvoice/gohighlevel"

type apiError struct {
	Message    any    `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func (e apiError) text() string {
	switch v := e.Message.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return strings.TrimSpace(e.Error)
}

type calendar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type calendarList struct {
	Calendars []calendar `json:"calendars"`
}

type event struct {
	ID                string `json:"id"`
	CalendarID        string `json:"calendarId"`
	ContactID         string `json:"contactId"`
	Title             string `json:"title"`
	AppointmentStatus string `json:"appointmentStatus"`
	StartTime         string `json:"startTime"`
}

type eventList struct {
	Events []event `json:"events"`
}

type contact struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

func (c contact) displayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

type contactEnvelope struct {
	Contact contact `json:"contact"`
}

type ghlClient struct {
	apiKey     string
	locationID string
	baseURL    string
	version    string
	client     *http.Client
}

func newGHLClient(apiKey, locationID, baseURL, version string) *ghlClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://services.leadconnectorhq.com"
	}
	version = strings.TrimSpace(version)
	if version == "" {
		version = "2021-04-15"
	}
	return &ghlClient{
		apiKey:     strings.TrimSpace(apiKey),
		locationID: strings.TrimSpace(locationID),
		baseURL:    baseURL,
		version:    version,
		client:     &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *ghlClient) listCalendars(ctx context.Context) ([]calendar, error) {
	values := url.Values{}
	values.Set("locationId", c.locationID)

	var out calendarList
	if err := c.get(ctx, "/calendars/", values, "ghl.calendars.list", &out); err != nil {
		return nil, err
	}
	return out.Calendars, nil
}

func (c *ghlClient) listEvents(ctx context.Context, calendarID string, from, to time.Time) ([]event, error) {
	values := url.Values{}
	values.Set("locationId", c.locationID)
	values.Set("calendarId", calendarID)
	values.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
	values.Set("endTime", strconv.FormatInt(to.UnixMilli(), 10))

	var out eventList
	if err := c.get(ctx, "/calendars/events", values, "ghl.events.list", &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *ghlClient) getContact(ctx context.Context, id string) (contact, error) {
	var out contactEnvelope
	if err := c.get(ctx, "/contacts/"+url.PathEscape(id), nil, "ghl.contacts.get", &out); err != nil {
		return contact{}, err
	}
	return out.Contact, nil
}

func (c *ghlClient) get(ctx context.Context, path string, values url.Values, operation string, out any) error {
	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", c.version)
	req.Header.Set("Accept", "application/json")

	req, span := tracing.StartClientSpan(req, tracerName, operation)
	resp, err := c.client.Do(req)
	if err != nil {
		tracing.EndClientSpan(span, 0, err)
		return err
	}
	defer resp.Body.Close()
	tracing.EndClientSpan(span, resp.StatusCode, nil)

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			if msg := apiErr.text(); msg != "" {
				return fmt.Errorf("gohighlevel %s: status %d: %s", operation, resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("gohighlevel %s: status %d", operation, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gohighlevel %s: decode: %w", operation, err)
	}
	return nil
}
