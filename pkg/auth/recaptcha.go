package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RecaptchaVerifier proxies token verification to the Google reCAPTCHA
// endpoint. It is a thin boundary call: the provider's internals are not our
// concern. With no secret configured, verification is skipped (local dev).
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// NewRecaptchaVerifier creates a verifier for the given secret and endpoint.
func NewRecaptchaVerifier(secret, verifyURL string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify checks a client captcha token. A missing secret disables the check.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) error {
	if v.secret == "" {
		logrus.Debug("reCAPTCHA secret not configured, skipping verification")
		return nil
	}
	if token == "" {
		return fmt.Errorf("captcha token missing")
	}

	form := url.Values{"secret": {v.secret}, "response": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode captcha response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("captcha verification rejected: %v", result.ErrorCodes)
	}
	return nil
}
