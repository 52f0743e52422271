// Package otp obtains one-time passwords from the external OTP provider.
//
// The provider is queried with a single GET request to the base URL with
// the caller's token appended. The response body, trimmed of surrounding
// whitespace, is the OTP. There is no retry.
package otp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/npm-otp-publish/internal/model"
)

// maxBodySize bounds how much of the provider response is read. An OTP is
// a handful of characters; anything larger is not an OTP.
const maxBodySize = 4096

// Fetcher retrieves OTPs over HTTP.
type Fetcher struct {
	client *http.Client
	logger *log.Logger
}

// NewFetcher creates a Fetcher. A nil client uses a client without a
// timeout, so the request is bounded only by the caller's context.
func NewFetcher(client *http.Client, logger *log.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch requests baseURL+token and returns the OTP.
//
// Transport failures, non-2xx statuses and empty bodies are returned as a
// CLIError with ExitOTPError. The token never appears in errors or logs.
func (f *Fetcher) Fetch(ctx context.Context, baseURL, token string) (string, error) {
	target := baseURL + token

	f.logger.Debug("requesting otp", "url", baseURL+"***")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", model.WrapCLIError(model.ExitOTPError, "error creating otp request", redact(err, token))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", model.WrapCLIError(model.ExitOTPError, "error requesting otp", redact(err, token))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", model.NewCLIError(model.ExitOTPError,
			fmt.Sprintf("otp provider returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", model.WrapCLIError(model.ExitOTPError, "error reading otp response", err)
	}

	otp := strings.TrimSpace(string(body))
	if otp == "" {
		return "", model.NewCLIError(model.ExitOTPError, "otp provider returned an empty response")
	}

	f.logger.Debug("received otp", "length", len(otp))
	return otp, nil
}

// redact replaces the token inside a transport error, which typically
// quotes the full request URL.
func redact(err error, token string) error {
	if token == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(msg, token, "***"))
}
