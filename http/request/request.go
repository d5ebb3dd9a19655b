package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"perchbot/logger"
)

const (
	DefaultMaxBytes = 1 << 20
	userAgent       = "perchbot/1.0"
)

var (
	ErrScheme = errors.New("only http and https urls are allowed")
	ErrStatus = errors.New("unexpected response status")

	client = &http.Client{Timeout: 30 * time.Second}
)

func (r *Request) GetMethod() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

func (r *Request) IsPost() bool {
	return r.GetMethod() == http.MethodPost
}

func (r *Request) AddHeader(key string, value string) {
	r.Headers = append(r.Headers, Headers{Key: key, Value: value})
}

// ValidUrl rejects anything but plain web urls.
func ValidUrl(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%q: %w", url, ErrScheme)
	}
	return nil
}

func (r *Request) do(ctx context.Context) (*http.Response, error) {
	if err := ValidUrl(r.Url); err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	if r.IsPost() && r.Payload != nil {
		jsonData, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		body = bytes.NewReader(jsonData)
		r.AddHeader("Content-Type", "application/json")
	}

	req, err := http.NewRequestWithContext(ctx, r.GetMethod(), r.Url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for _, header := range r.Headers {
		req.Header.Set(header.Key, header.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// Fetch returns the response body, reading at most MaxBytes.
func (r *Request) Fetch(ctx context.Context) (*Response, error) {
	resp, err := r.do(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w %d", r.Url, ErrStatus, resp.StatusCode)
	}

	limit := r.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// Call decodes a JSON response into response.
func (r *Request) Call(ctx context.Context, response interface{}) error {
	res, err := r.Fetch(ctx)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.Body, response); err != nil {
		logger.Error("Failed to decode JSON response", "url", r.Url, "error", err)
		return fmt.Errorf("failed to decode JSON response: %w", err)
	}
	return nil
}
