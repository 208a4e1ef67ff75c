package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/labstack/echo/v4"
)

// keyPrefix marks ingest keys issued to the transcription backend.
const keyPrefix = "mm_"

// APIKeyInfo identifies the caller behind an ingest key.
type APIKeyInfo struct {
	ID   string
	Name string
}

const apiKeyInfoKey = "api_key_info"

// APIKeyAuth authenticates machine callers (the voicemail transcription
// backend) using X-API-Key or Bearer authentication.
func APIKeyAuth(store *storage.Storage) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var key string

			if apiKey := c.Request().Header.Get("X-API-Key"); apiKey != "" {
				key = apiKey
			} else if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}

			if key == "" {
				return echo.NewHTTPError(401, "Missing API key")
			}

			if !strings.HasPrefix(key, keyPrefix) {
				return echo.NewHTTPError(401, "Invalid API key format")
			}

			h := sha256.Sum256([]byte(key))
			hash := hex.EncodeToString(h[:])

			apiKey, err := store.Queries.GetAPIKeyByHash(c.Request().Context(), hash)
			if err != nil {
				slog.Debug("API key lookup failed", "error", err)
				return echo.NewHTTPError(401, "Invalid or inactive API key")
			}

			if !apiKey.IsActive {
				return echo.NewHTTPError(401, "API key is inactive")
			}

			go func() {
				_ = store.Queries.UpdateAPIKeyLastUsed(context.Background(), apiKey.ID)
			}()

			c.Set(apiKeyInfoKey, &APIKeyInfo{ID: apiKey.ID, Name: apiKey.Name})
			return next(c)
		}
	}
}

// GetAPIKeyInfo returns the authenticated ingest key, if any.
func GetAPIKeyInfo(c echo.Context) (*APIKeyInfo, bool) {
	info, ok := c.Get(apiKeyInfoKey).(*APIKeyInfo)
	return info, ok && info != nil
}

// GenerateAPIKey creates a new ingest key and its storage hash.
func GenerateAPIKey() (key, hash string, err error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}

	key = keyPrefix + hex.EncodeToString(raw)
	h := sha256.Sum256([]byte(key))
	return key, hex.EncodeToString(h[:]), nil
}
