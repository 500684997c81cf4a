package mailx

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Brand is the sender identity rendered into templates.
type Brand struct {
	Product   string
	PolicyURL string
	Support   string
}

var (
	otpHTML = template.Must(template.New("otp").Parse(`<div style="font-family:sans-serif">
<h2>{{.Product}} verification code</h2>
<p>Your one time code is</p>
<p style="font-size:28px;letter-spacing:6px"><b>{{.Code}}</b></p>
<p>It expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
</div>`))

	welcomeHTML = template.Must(template.New("welcome").Parse(`<div style="font-family:sans-serif">
<h2>Welcome to {{.Product}}, {{.Name}}!</h2>
<p>Your account is ready.</p>
{{if .PolicyURL}}<p>Please read our terms and privacy policy: <a href="{{.PolicyURL}}">{{.PolicyURL}}</a></p>{{end}}
{{if .Support}}<p>Questions? Write to {{.Support}}.</p>{{end}}
</div>`))
)

// OTPMessage renders the verification code email.
func (b Brand) OTPMessage(to, code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)

	var buf bytes.Buffer
	err := otpHTML.Execute(&buf, map[string]any{"Product": b.Product, "Code": code, "Minutes": minutes})
	if err != nil {
		return Message{}, fmt.Errorf("mailx: render otp: %w", err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s verification code", b.Product),
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Your %s verification code is %s. It expires in %d minutes.", b.Product, code, minutes),
	}, nil
}

// WelcomeMessage renders the post registration email with the policy link.
func (b Brand) WelcomeMessage(to, name string) (Message, error) {
	var buf bytes.Buffer
	err := welcomeHTML.Execute(&buf, map[string]any{
		"Product":   b.Product,
		"Name":      name,
		"PolicyURL": b.PolicyURL,
		"Support":   b.Support,
	})
	if err != nil {
		return Message{}, fmt.Errorf("mailx: render welcome: %w", err)
	}

	text := fmt.Sprintf("Welcome to %s, %s! Your account is ready.", b.Product, name)
	if b.PolicyURL != "" {
		text += " Terms and privacy policy: " + b.PolicyURL
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Welcome to %s", b.Product),
		HTML:    buf.String(),
		Text:    text,
	}, nil
}
