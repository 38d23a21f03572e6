// Package remote fetches JSON from third-party HTTP APIs and classifies what
// went wrong when it fails.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Kind categorizes a remote failure.
type Kind int

const (
	// KindNetwork covers transport failures: DNS, refused connections, timeouts.
	KindNetwork Kind = iota
	// KindStatus is a non-2xx HTTP status.
	KindStatus
	// KindAPI is a well-formed response whose success indicator says no.
	KindAPI
	// KindMalformed is a body that does not match the expected contract.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindAPI:
		return "api"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ErrMalformed matches every KindMalformed error via errors.Is.
var ErrMalformed = errors.New("malformed upstream payload")

type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	switch e.Kind {
	case KindStatus:
		fmt.Fprintf(&b, "HTTP %d", e.Status)
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrMalformed && e.Kind == KindMalformed
}

// Malformed builds a KindMalformed error for contract violations found after
// decoding.
func Malformed(op, msg string) *Error {
	return &Error{Kind: KindMalformed, Op: op, Message: msg}
}

// APIError builds a KindAPI error from an upstream failure indicator.
func APIError(op, msg string) *Error {
	return &Error{Kind: KindAPI, Op: op, Message: msg}
}

// KindOf reports the Kind of err, if it is a remote error.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// UserMessage turns err into a line fit for the UI. what names the thing
// being loaded, e.g. "weather data".
func UserMessage(err error, what string) string {
	kind, ok := KindOf(err)
	if !ok {
		return fmt.Sprintf("Unable to load %s. Please try again later.", what)
	}
	switch kind {
	case KindNetwork:
		return fmt.Sprintf("Unable to load %s. Check your connection and try again.", what)
	case KindStatus:
		var re *Error
		errors.As(err, &re)
		switch {
		case re.Status == http.StatusUnauthorized:
			return fmt.Sprintf("Unable to load %s: the API key was rejected.", what)
		case re.Status == http.StatusNotFound:
			return fmt.Sprintf("Unable to load %s: not found. Please try a different query.", what)
		case re.Status == http.StatusTooManyRequests:
			return fmt.Sprintf("Unable to load %s: rate limited. Please try again later.", what)
		}
	case KindMalformed:
		return fmt.Sprintf("No %s available at the moment.", what)
	}
	return fmt.Sprintf("Unable to load %s. Please try again later.", what)
}

// Client issues GET requests with a bounded timeout.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// WithHTTPClient wraps an existing client, e.g. an httptest server's.
func WithHTTPClient(c *http.Client) *Client {
	return &Client{http: c}
}

// GetJSON fetches rawURL and decodes the body into out. op labels errors.
// A non-2xx response is KindStatus; errBody, if non-nil, is decoded from the
// error response so callers can surface the upstream message.
func (c *Client) GetJSON(ctx context.Context, op, rawURL string, out any, errBody any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "newsdesk")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		re := &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode}
		if errBody != nil {
			json.Unmarshal(b, errBody)
		}
		return re
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Err: err}
	}
	return nil
}
