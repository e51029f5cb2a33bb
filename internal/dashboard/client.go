package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// User-facing messages for failures detected by the client itself.
const (
	MsgEnterAddress = "Please enter an address."
	MsgNotFound     = "No property data was found for that address."
	MsgUnreachable  = "Could not reach the ShelterSignal service. Please try again later."
	MsgTimeout      = "The request timed out. Please try again."
	MsgBadResponse  = "Received an invalid response from the server."
)

// Client fetches property records from the proxy endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the proxy at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchProperty looks up address through the proxy. Every error is a *FetchError.
func (c *Client) FetchProperty(ctx context.Context, address string) (*types.PropertyData, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &FetchError{Kind: KindValidation, Message: MsgEnterAddress}
	}

	endpoint := c.baseURL + "/api/property?address=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindSystem, Message: MsgUnreachable}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := MsgUnreachable
		if errors.Is(err, context.DeadlineExceeded) {
			msg = MsgTimeout
		}
		return nil, &FetchError{Kind: KindSystem, Message: msg}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindSystem, StatusCode: resp.StatusCode, Message: MsgBadResponse}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var data types.PropertyData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &FetchError{Kind: KindSystem, StatusCode: resp.StatusCode, Message: MsgBadResponse}
	}
	return &data, nil
}

func statusError(status int, body []byte) *FetchError {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	fe := &FetchError{Kind: KindSystem, StatusCode: status, Message: strings.TrimSpace(payload.Message)}
	switch status {
	case http.StatusNotFound:
		fe.Kind = KindNotFound
		if fe.Message == "" {
			fe.Message = MsgNotFound
		}
	case http.StatusBadRequest:
		fe.Kind = KindValidation
		if fe.Message == "" {
			fe.Message = MsgEnterAddress
		}
	}
	if fe.Message == "" {
		fe.Message = fmt.Sprintf("Request failed with status %d.", status)
	}
	return fe
}
