package email

// voicemailAlertTemplate is the content fragment for new-voicemail alerts.
const voicemailAlertTemplate = `
<h2>New voicemail</h2>
{{if .RecipientName}}<p>Hi {{.RecipientName}},</p>{{end}}
<p>You received a new voicemail and the transcription is ready.</p>
<div class="info-box">
    <p><strong>From:</strong> {{if .CallerName}}{{.CallerName}} ({{.CallerNumber}}){{else}}{{.CallerNumber}}{{end}}</p>
    <p><strong>Received:</strong> {{.ReceivedAt}}</p>
    {{if .Duration}}<p><strong>Duration:</strong> {{.Duration}}</p>{{end}}
</div>
{{if .Excerpt}}
<blockquote>{{.Excerpt}}</blockquote>
{{end}}
{{if .DashboardURL}}
<p><a href="{{.DashboardURL}}" class="button">Read the full transcription</a></p>
{{end}}
`

// contactTemplate is the content fragment forwarded to the team inbox.
const contactTemplate = `
<h2>Contact form submission</h2>
<div class="info-box">
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    {{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
</div>
<p><strong>Message:</strong></p>
<blockquote>{{.Message}}</blockquote>
<p>Reply directly to this email to answer.</p>
`
