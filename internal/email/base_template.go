package email

import (
	"bytes"
	"html/template"
)

// BaseEmailData contains data for the base email wrapper
type BaseEmailData struct {
	Content template.HTML
	Subject string
}

// baseEmailTemplate is the reusable wrapper for all emails
const baseEmailTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Subject}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            margin: 0;
            padding: 0;
            background-color: #f5f5f5;
        }
        .email-wrapper {
            max-width: 600px;
            margin: 0 auto;
            background-color: #ffffff;
        }
        .header {
            background-color: #1D4ED8;
            padding: 20px 30px;
            color: #ffffff;
        }
        .header h1 {
            margin: 0;
            font-size: 22px;
        }
        .content {
            padding: 30px;
        }
        .info-box {
            background-color: #f9f9f9;
            padding: 15px;
            border-radius: 5px;
            margin: 20px 0;
        }
        .info-box p {
            margin: 5px 0;
        }
        blockquote {
            border-left: 3px solid #1D4ED8;
            margin: 20px 0;
            padding: 10px 15px;
            background-color: #f9f9f9;
            font-style: italic;
        }
        .button {
            display: inline-block;
            background-color: #1D4ED8;
            color: #ffffff !important;
            padding: 12px 24px;
            border-radius: 6px;
            text-decoration: none;
            font-weight: 600;
        }
        .footer {
            padding: 20px 30px;
            text-align: center;
            font-size: 12px;
            color: #888;
            border-top: 1px solid #eee;
        }
    </style>
</head>
<body>
    <div class="email-wrapper">
        <div class="header">
            <h1>MobMail</h1>
        </div>
        <div class="content">
            {{.Content}}
        </div>
        <div class="footer">
            <div>MobMail &middot; voicemail, transcribed</div>
            <div style="margin-top: 8px;">
                &copy; 2026 MobMail. All rights reserved.
            </div>
        </div>
    </div>
</body>
</html>
`

// WrapEmailContent wraps content in the base email template
func WrapEmailContent(content string, subject string) (string, error) {
	tmpl := template.Must(template.New("base").Parse(baseEmailTemplate))

	data := BaseEmailData{
		Content: template.HTML(content),
		Subject: subject,
	}

	var result bytes.Buffer
	if err := tmpl.Execute(&result, data); err != nil {
		return "", err
	}

	return result.String(), nil
}
