// Package recaptcha verifies Google reCAPTCHA v3 tokens for the public
// contact form. Verification is skipped entirely when no secret key is
// configured, so local development works without Google credentials.
package recaptcha

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

const verifyURL = "https://www.google.com/recaptcha/api/siteverify"

type VerifyResponse struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Enabled reports whether a secret key is configured.
func Enabled() bool {
	return os.Getenv("RECAPTCHA_SECRET_KEY") != ""
}

func Verify(token string) (*VerifyResponse, error) {
	secretKey := os.Getenv("RECAPTCHA_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("RECAPTCHA_SECRET_KEY not set")
	}

	resp, err := http.PostForm(verifyURL, url.Values{
		"secret":   {secretKey},
		"response": {token},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// IsValid verifies a token and checks its score against RECAPTCHA_MIN_SCORE
// (default 0.5).
func IsValid(token string) (bool, float64, error) {
	result, err := Verify(token)
	if err != nil {
		return false, 0, err
	}

	if !result.Success {
		return false, result.Score, fmt.Errorf("recaptcha verification failed: %v", result.ErrorCodes)
	}

	minScore := 0.5
	if s := os.Getenv("RECAPTCHA_MIN_SCORE"); s != "" {
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			minScore = parsed
		}
	}

	return result.Score >= minScore, result.Score, nil
}
