package handlers

import (
	"html/template"
	"net/http"

	"github.com/beingcrieative/mobmail-sub002/internal/auth"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/views/helpers"
	"github.com/beingcrieative/mobmail-sub002/views/layout"
	"github.com/labstack/echo/v4"
)

// PageHandler renders the marketing, auth, and dashboard pages.
type PageHandler struct {
	storage        *storage.Storage
	publishableKey string
}

func NewPageHandler(store *storage.Storage, publishableKey string) *PageHandler {
	return &PageHandler{storage: store, publishableKey: publishableKey}
}

func (h *PageHandler) meta(c echo.Context, title, description string) layout.PageMeta {
	ac := auth.GetAuthContext(c)
	return layout.PageMeta{
		Title:             title,
		Description:       description,
		User:              ac.User,
		ShowConsentBanner: session.ReadConsent(c.Request()) == session.ConsentUnset,
	}
}

var marketingTmpl = template.Must(template.New("marketing").Parse(`
<h1>{{.Heading}}</h1>
<p>{{.Copy}}</p>
{{if .CTA}}<a href="/register">{{.CTA}}</a>{{end}}`))

type marketingPage struct {
	Heading string
	Copy    string
	CTA     string
}

func (h *PageHandler) render(c echo.Context, meta layout.PageMeta, body template.HTML) error {
	return layout.Render(c, layout.Page{Meta: meta, Body: body})
}

func (h *PageHandler) marketing(c echo.Context, title string, page marketingPage) error {
	body, err := layout.Body(marketingTmpl, page)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page")
	}
	return h.render(c, h.meta(c, title, page.Copy), body)
}

func (h *PageHandler) HandleHome(c echo.Context) error {
	return h.marketing(c, "Voicemail, transcribed", marketingPage{
		Heading: "Never listen to voicemail again",
		Copy:    "MobMail transcribes every voicemail and delivers it to your dashboard in seconds.",
		CTA:     "Start free",
	})
}

func (h *PageHandler) HandleFeatures(c echo.Context) error {
	return h.marketing(c, "Features", marketingPage{
		Heading: "Features",
		Copy:    "Accurate transcriptions, caller identification, instant notifications.",
	})
}

func (h *PageHandler) HandlePricing(c echo.Context) error {
	return h.marketing(c, "Pricing", marketingPage{
		Heading: "Pricing",
		Copy:    "One plan, unlimited voicemails.",
		CTA:     "Subscribe",
	})
}

func (h *PageHandler) HandleAbout(c echo.Context) error {
	return h.marketing(c, "About", marketingPage{
		Heading: "About MobMail",
		Copy:    "Built for people whose phone never stops ringing.",
	})
}

func (h *PageHandler) HandlePrivacy(c echo.Context) error {
	return h.marketing(c, "Privacy", marketingPage{
		Heading: "Privacy policy",
		Copy:    "Voicemail audio and transcripts are yours; we store nothing we don't need.",
	})
}

func (h *PageHandler) HandleTerms(c echo.Context) error {
	return h.marketing(c, "Terms", marketingPage{
		Heading: "Terms of service",
		Copy:    "The boring but important part.",
	})
}

var contactTmpl = template.Must(template.New("contact").Parse(`
<h1>Contact us</h1>
<form method="post" action="/contact/submit">
<input name="name" placeholder="Name" required>
<input name="email" type="email" placeholder="Email" required>
<input name="phone" placeholder="Phone">
<textarea name="message" placeholder="How can we help?" required></textarea>
<button type="submit">Send</button>
</form>`))

func (h *PageHandler) HandleContact(c echo.Context) error {
	body, err := layout.Body(contactTmpl, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page")
	}
	return h.render(c, h.meta(c, "Contact", "Get in touch with MobMail."), body)
}

var authPageTmpl = template.Must(template.New("auth").Parse(`
<h1>{{.Heading}}</h1>
<form method="post" action="{{.Action}}">
{{if .WithName}}<input name="name" placeholder="Name">{{end}}
<input name="email" type="email" placeholder="Email" required>
{{if .WithPassword}}<input name="password" type="password" placeholder="Password" required>{{end}}
<button type="submit">{{.Submit}}</button>
</form>
{{if .FooterHref}}<a href="{{.FooterHref}}">{{.FooterText}}</a>{{end}}`))

type authPage struct {
	Heading      string
	Action       string
	Submit       string
	WithName     bool
	WithPassword bool
	FooterHref   string
	FooterText   string
}

func (h *PageHandler) HandleLogin(c echo.Context) error {
	body, err := layout.Body(authPageTmpl, authPage{
		Heading:      "Log in",
		Action:       "/api/auth/login",
		Submit:       "Log in",
		WithPassword: true,
		FooterHref:   "/forgot-password",
		FooterText:   "Forgot your password?",
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page")
	}
	return h.render(c, h.meta(c, "Log in", "Log in to your MobMail dashboard."), body)
}

func (h *PageHandler) HandleRegister(c echo.Context) error {
	body, err := layout.Body(authPageTmpl, authPage{
		Heading:      "Create your account",
		Action:       "/api/auth/register",
		Submit:       "Sign up",
		WithName:     true,
		WithPassword: true,
		FooterHref:   "/login",
		FooterText:   "Already have an account?",
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page")
	}
	return h.render(c, h.meta(c, "Sign up", "Create a MobMail account."), body)
}

func (h *PageHandler) HandleForgotPassword(c echo.Context) error {
	body, err := layout.Body(authPageTmpl, authPage{
		Heading: "Reset your password",
		Action:  "/api/auth/reset-password",
		Submit:  "Send reset email",
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page")
	}
	return h.render(c, h.meta(c, "Reset password", "Reset your MobMail password."), body)
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`
<h1>{{.Heading}}</h1>
{{if .Transcriptions}}
<ul>
{{range .Transcriptions}}
<li><strong>{{.Caller}}</strong> {{.Duration}} — {{.Received}}<p>{{.Excerpt}}</p></li>
{{end}}
</ul>
{{else}}
<p>{{.Empty}}</p>
{{end}}`))

type dashboardRow struct {
	Caller   string
	Duration string
	Received string
	Excerpt  string
}

type dashboardPage struct {
	Heading        string
	Empty          string
	Transcriptions []dashboardRow
}

// HandleDashboard renders the mobile dashboard root with recent
// transcriptions. Nothing protected is rendered for anonymous requests;
// the gate has already redirected them, this is defense at the handler.
func (h *PageHandler) HandleDashboard(c echo.Context) error {
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/login")
	}

	items, err := h.storage.Queries.ListTranscriptionsByUser(c.Request().Context(), dbUser.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load transcriptions")
	}

	page := dashboardPage{
		Heading: "Your voicemails",
		Empty:   "No voicemails yet. They will appear here moments after someone calls.",
	}
	for _, t := range items {
		page.Transcriptions = append(page.Transcriptions, dashboardRow{
			Caller:   helpers.FormatCaller(t.CallerName, t.CallerNumber),
			Duration: helpers.FormatDuration(t.DurationSeconds),
			Received: helpers.FormatDateTime(t.ReceivedAt),
			Excerpt:  excerpt(t.Transcript, 140),
		})
	}

	body, err := layout.Body(dashboardTmpl, page)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page")
	}
	return h.render(c, h.meta(c, "Dashboard", "Your transcribed voicemails."), body)
}

var profileTmpl = template.Must(template.New("profile").Parse(`
<h1>Your profile</h1>
<dl>
<dt>Email</dt><dd>{{.Email}}</dd>
<dt>Name</dt><dd>{{.Name}}</dd>
<dt>Company</dt><dd>{{.Company}}</dd>
<dt>Phone</dt><dd>{{.Phone}}</dd>
</dl>`))

func (h *PageHandler) HandleProfile(c echo.Context) error {
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/login")
	}

	body, err := layout.Body(profileTmpl, map[string]string{
		"Email":   dbUser.Email,
		"Name":    helpers.FormatNullString(dbUser.Name, "—"),
		"Company": helpers.FormatNullString(dbUser.Company, "—"),
		"Phone":   helpers.FormatNullString(dbUser.Phone, "—"),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page")
	}
	return h.render(c, h.meta(c, "Profile", "Your MobMail profile."), body)
}

func (h *PageHandler) HandleSettings(c echo.Context) error {
	if _, ok := auth.GetDBUser(c); !ok {
		return c.Redirect(http.StatusFound, "/login")
	}
	return h.marketing(c, "Settings", marketingPage{
		Heading: "Settings",
		Copy:    "Notification preferences and subscription management.",
	})
}
