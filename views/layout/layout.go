// Package layout renders the shared HTML shell. Pages are deliberately
// minimal server-rendered markup; the visual design system lives elsewhere.
package layout

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/labstack/echo/v4"
)

// PageMeta carries per-page metadata for the shell.
type PageMeta struct {
	Title       string
	Description string
	// User is nil for anonymous visitors.
	User *session.Profile
	// ShowConsentBanner is set when no consent record exists yet.
	ShowConsentBanner bool
}

// Page is a rendered page: the shared meta plus a page-specific body
// template and its data.
type Page struct {
	Meta PageMeta
	Body template.HTML
}

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}} — MobMail</title>
<meta name="description" content="{{.Meta.Description}}">
<link rel="stylesheet" href="/public/app.css">
</head>
<body>
<header>
<nav>
<a href="/">MobMail</a>
<a href="/features">Features</a>
<a href="/pricing">Pricing</a>
{{if .Meta.User}}
<a href="/mobile-v3">Dashboard</a>
<span>{{.Meta.User.Email}}</span>
<form method="post" action="/api/auth/logout"><button type="submit">Log out</button></form>
{{else}}
<a href="/login">Log in</a>
<a href="/register">Sign up</a>
{{end}}
</nav>
</header>
<main>
{{.Body}}
</main>
{{if .Meta.ShowConsentBanner}}
<div id="consent-banner">
<p>We use cookies to run MobMail.</p>
<form method="post" action="/api/consent"><button name="choice" value="accepted">Accept</button><button name="choice" value="declined">Decline</button></form>
</div>
{{end}}
</body>
</html>`))

// Render writes the page through the shared shell.
func Render(c echo.Context, p Page) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return shell.Execute(c.Response().Writer, p)
}

// Body builds a page body from a template and data; template parse errors
// are programmer errors and panic at startup via template.Must.
func Body(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
