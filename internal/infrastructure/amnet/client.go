package amnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from AM.net (10MB)
const maxResponseSize = 10 * 1024 * 1024

// RequestObserver is notified of every AM.net round trip
type RequestObserver interface {
	ObserveAMNetRequest(ctx context.Context, endpoint string, status int, elapsed time.Duration, err error)
}

// Client implements integration.Client over the AM.net REST API
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	observer   RequestObserver
}

var _ integration.Client = (*Client)(nil)

// NewClient creates a new AM.net client with the given configuration
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.Named("amnet"),
	}, nil
}

// SetObserver sets the request observer used for metrics
func (c *Client) SetObserver(o RequestObserver) {
	c.observer = o
}

// ---------------------------------------------------------------------------
// Person Operations
// ---------------------------------------------------------------------------

// GetPerson retrieves a person by Names ID
func (c *Client) GetPerson(ctx context.Context, namesID string) (*integration.Person, error) {
	id, err := validateNamesID(namesID)
	if err != nil {
		return nil, err
	}
	var person integration.Person
	if err := c.get(ctx, "/Person", url.Values{"id": {id}}, &person); err != nil {
		return nil, err
	}
	if person.NamesID == "" {
		return nil, fmt.Errorf("%w: person %s", integration.ErrAMNetNotFound, id)
	}
	return &person, nil
}

// CreatePerson posts a new person and returns the assigned Names ID
func (c *Client) CreatePerson(ctx context.Context, person *integration.Person) (string, error) {
	var resp createPersonResponse
	if err := c.send(ctx, http.MethodPost, "/Person", person, &resp); err != nil {
		return "", err
	}
	id := strings.TrimSpace(resp.NamesID)
	if id == "" {
		return "", fmt.Errorf("%w: create person returned no NamesId", integration.ErrAMNetInvalidResponse)
	}
	return id, nil
}

// UpdatePerson replaces a person record
func (c *Client) UpdatePerson(ctx context.Context, person *integration.Person) error {
	if _, err := validateNamesID(person.NamesID); err != nil {
		return err
	}
	return c.send(ctx, http.MethodPut, "/Person", person, nil)
}

// SearchPersons runs /PersonSearch with the non-empty filters of q
func (c *Client) SearchPersons(ctx context.Context, q integration.PersonSearchQuery) ([]integration.PersonSummary, error) {
	params := url.Values{}
	if q.Email != "" {
		params.Set("email", q.Email)
	}
	if q.FirstName != "" {
		params.Set("firstName", q.FirstName)
	}
	if q.LastName != "" {
		params.Set("lastName", q.LastName)
	}
	if !q.ChangedSince.IsZero() {
		params.Set("changedSince", q.ChangedSince.Format("2006-01-02"))
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: person search needs at least one filter", integration.ErrAMNetRequestFailed)
	}

	var found []integration.PersonSummary
	if err := c.get(ctx, "/PersonSearch", params, &found); err != nil {
		if errors.Is(err, integration.ErrAMNetNotFound) {
			return []integration.PersonSummary{}, nil
		}
		return nil, err
	}
	return found, nil
}

// ---------------------------------------------------------------------------
// Dues Operations
// ---------------------------------------------------------------------------

// GetDues retrieves a person's dues ledger
func (c *Client) GetDues(ctx context.Context, namesID string) (*integration.Dues, error) {
	id, err := validateNamesID(namesID)
	if err != nil {
		return nil, err
	}
	var dues integration.Dues
	if err := c.get(ctx, "/Person/"+id+"/dues", nil, &dues); err != nil {
		return nil, err
	}
	return &dues, nil
}

// GetPaymentPlans retrieves a person's payment plans
func (c *Client) GetPaymentPlans(ctx context.Context, namesID string) ([]integration.PaymentPlan, error) {
	id, err := validateNamesID(namesID)
	if err != nil {
		return nil, err
	}
	var plans []integration.PaymentPlan
	if err := c.get(ctx, "/Person/"+id+"/paymentplans", nil, &plans); err != nil {
		if errors.Is(err, integration.ErrAMNetNotFound) {
			return []integration.PaymentPlan{}, nil
		}
		return nil, err
	}
	return plans, nil
}

// GetDuesRates retrieves the dues rate table for a fiscal year
func (c *Client) GetDuesRates(ctx context.Context, fiscalYear int) ([]integration.Rate, error) {
	return c.rates(ctx, "/DuesRates", fiscalYear)
}

// ---------------------------------------------------------------------------
// Legislative Operations
// ---------------------------------------------------------------------------

// GetLegislativeContacts retrieves a person's legislator relationships
func (c *Client) GetLegislativeContacts(ctx context.Context, namesID string) ([]integration.LegislativeContact, error) {
	id, err := validateNamesID(namesID)
	if err != nil {
		return nil, err
	}
	var contacts []integration.LegislativeContact
	if err := c.get(ctx, "/Person/"+id+"/legislativecontacts", nil, &contacts); err != nil {
		if errors.Is(err, integration.ErrAMNetNotFound) {
			return []integration.LegislativeContact{}, nil
		}
		return nil, err
	}
	return contacts, nil
}

// UpdateLegislativeContacts replaces a person's legislator relationships
func (c *Client) UpdateLegislativeContacts(ctx context.Context, namesID string, contacts []integration.LegislativeContact) error {
	id, err := validateNamesID(namesID)
	if err != nil {
		return err
	}
	if contacts == nil {
		contacts = []integration.LegislativeContact{}
	}
	body := legislativeContactsRequest{NamesID: id, Contacts: contacts}
	return c.send(ctx, http.MethodPut, "/Person/"+id+"/legislativecontacts", body, nil)
}

// ---------------------------------------------------------------------------
// Peer Review Operations
// ---------------------------------------------------------------------------

// GetFirmPeerReview retrieves a firm's peer-review billing ledger
func (c *Client) GetFirmPeerReview(ctx context.Context, firmCode string) (*integration.FirmPeerReview, error) {
	code := strings.TrimSpace(firmCode)
	if code == "" {
		return nil, fmt.Errorf("%w: firm code is required", integration.ErrAMNetRequestFailed)
	}
	var review integration.FirmPeerReview
	if err := c.get(ctx, "/firm/"+url.PathEscape(code)+"/peerreview", nil, &review); err != nil {
		return nil, err
	}
	if review.FirmCode == "" {
		review.FirmCode = code
	}
	return &review, nil
}

// GetPeerReviewRates retrieves the peer-review rate table for a fiscal year
func (c *Client) GetPeerReviewRates(ctx context.Context, fiscalYear int) ([]integration.Rate, error) {
	return c.rates(ctx, "/PeerReviewRates", fiscalYear)
}

// ---------------------------------------------------------------------------
// Reference Operations
// ---------------------------------------------------------------------------

// GetList retrieves an AM.net code list
func (c *Client) GetList(ctx context.Context, name string) ([]integration.ListItem, error) {
	var items []integration.ListItem
	if err := c.get(ctx, "/Lists", url.Values{"name": {name}}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetFirmChanges retrieves firms changed since the given time
func (c *Client) GetFirmChanges(ctx context.Context, since time.Time) ([]integration.FirmChange, error) {
	var changes []integration.FirmChange
	params := url.Values{"since": {since.UTC().Format("2006-01-02T15:04:05")}}
	if err := c.get(ctx, "/FirmChanges", params, &changes); err != nil {
		if errors.Is(err, integration.ErrAMNetNotFound) {
			return []integration.FirmChange{}, nil
		}
		return nil, err
	}
	return changes, nil
}

// GetEvent retrieves an event by code
func (c *Client) GetEvent(ctx context.Context, code string) (*integration.Event, error) {
	var event integration.Event
	if err := c.get(ctx, "/Event", url.Values{"code": {code}}, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// GetProduct retrieves a product by code
func (c *Client) GetProduct(ctx context.Context, code string) (*integration.Product, error) {
	var product integration.Product
	if err := c.get(ctx, "/Product", url.Values{"code": {code}}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) rates(ctx context.Context, path string, fiscalYear int) ([]integration.Rate, error) {
	var rates []integration.Rate
	if err := c.get(ctx, path, url.Values{"year": {strconv.Itoa(fiscalYear)}}, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// get performs a GET, retrying while AM.net is unavailable
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.config.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	backoff := c.config.RetryBackoff
	var err error
	for attempt := 0; ; attempt++ {
		err = c.do(ctx, http.MethodGet, path, endpoint, nil, out)
		if err == nil || !errors.Is(err, integration.ErrAMNetUnavailable) || attempt >= c.config.MaxRetries {
			return err
		}
		logger.WithLogger(ctx, c.logger).Warn("AM.net unavailable, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", integration.ErrAMNetUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// send performs a POST or PUT with a JSON body. Writes are not retried.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("amnet: failed to encode request: %w", err)
	}
	return c.do(ctx, method, path, c.config.BaseURL+path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path, endpoint string, payload []byte, out any) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		if c.observer != nil {
			c.observer.ObserveAMNetRequest(ctx, method+" "+path, status, time.Since(start), err)
		}
	}()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("amnet: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.config.User, c.config.Key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrAMNetUnavailable, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", integration.ErrAMNetUnavailable, err)
	}

	logger.WithLogger(ctx, c.logger).Debug("AM.net request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := statusError(status, respBody); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", integration.ErrAMNetInvalidResponse, err)
	}
	return nil
}

// statusError maps an HTTP status onto the integration error set
func statusError(status int, body []byte) error {
	if status < 400 {
		return nil
	}
	var e errorResponse
	_ = json.Unmarshal(body, &e)
	msg := e.text()
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrAMNetAuthFailed, status, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", integration.ErrAMNetNotFound, msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrAMNetUnavailable, status, msg)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrAMNetRequestFailed, status, msg)
	}
}

// validateNamesID checks that a Names ID is numeric
func validateNamesID(namesID string) (string, error) {
	id := strings.TrimSpace(namesID)
	if id == "" {
		return "", fmt.Errorf("%w: Names ID is required", integration.ErrAMNetRequestFailed)
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", fmt.Errorf("%w: invalid Names ID %q", integration.ErrAMNetRequestFailed, namesID)
	}
	return id, nil
}
