package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVoicemailAlertEmail(t *testing.T) {
	html, err := RenderVoicemailAlertEmail(&VoicemailAlertData{
		RecipientName: "Anna",
		CallerName:    "Jansen Bakkerij",
		CallerNumber:  "+31612345678",
		Duration:      "0:42",
		ReceivedAt:    "31 Aug 2026 14:05",
		Excerpt:       "Goedemiddag, ik bel over de bestelling van vrijdag...",
		DashboardURL:  "https://app.example.com/mobile-v3",
	})

	require.NoError(t, err)
	assert.Contains(t, html, "Jansen Bakkerij")
	assert.Contains(t, html, "+31612345678")
	assert.Contains(t, html, "0:42")
	assert.Contains(t, html, "https://app.example.com/mobile-v3")
	assert.Contains(t, html, "<!DOCTYPE html>")
}

func TestRenderVoicemailAlertEmailAnonymousCaller(t *testing.T) {
	html, err := RenderVoicemailAlertEmail(&VoicemailAlertData{
		CallerNumber: "+31201234567",
		ReceivedAt:   "31 Aug 2026 09:12",
	})

	require.NoError(t, err)
	assert.Contains(t, html, "+31201234567")
	assert.NotContains(t, html, "Duration")
}

func TestRenderContactEmailEscapesHTML(t *testing.T) {
	html, err := RenderContactEmail(&ContactData{
		Name:    "Eva",
		Email:   "eva@example.com",
		Message: "<script>alert(1)</script>",
	})

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "eva@example.com")
}

func TestSendFailsWhenUnconfigured(t *testing.T) {
	s := &Service{}

	assert.False(t, s.Enabled())
	err := s.Send(&Email{To: []string{"a@b.com"}, Subject: "x", Body: "y"})
	assert.Error(t, err)
}
