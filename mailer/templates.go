// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var prizeTemplate = template.Must(template.New("prize").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Prize Information - {{.PrizeTitle}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #f59e0b; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: white; padding: 30px; border: 1px solid #e5e7eb; border-radius: 0 0 8px 8px; }
    .prize-image { max-width: 100%; height: auto; border-radius: 8px; margin: 20px 0; }
    .footer { text-align: center; margin-top: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Congratulations {{.Name}}!</h1>
      <p>You've entered to win: {{.PrizeTitle}}</p>
    </div>
    <div class="content">
      <p>Thank you for your interest in the property at <strong>{{.PropertyAddress}}</strong>!</p>
      <h2>Prize Details</h2>
      <h3>{{.PrizeTitle}}</h3>
      {{- if .PrizeDescription}}
      <p>{{.PrizeDescription}}</p>
      {{- end}}
      {{- if .PrizeImageURL}}
      <img src="{{.PrizeImageURL}}" alt="{{.PrizeTitle}}" class="prize-image">
      {{- end}}
      <div style="background: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
        <p><strong>What happens next?</strong></p>
        <ul>
          <li>Your entry has been recorded</li>
          <li>Winners will be selected randomly</li>
          <li>If you win, we'll contact you via this email</li>
        </ul>
      </div>
      <p>Good luck!</p>
    </div>
    <div class="footer">
      <p>This email was sent from the Scan for a Prize lead capture system.</p>
    </div>
  </div>
</body>
</html>
`))

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Confirm your property</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <p>Hi,</p>
  <p>Someone asked to claim <strong>{{.PropertyAddress}}</strong> on Scan for a Prize with this email address.</p>
  <p><a href="{{.URL}}">Confirm and open your dashboard</a></p>
  <p>This link expires in 24 hours. If you didn't request it, you can ignore this email.</p>
</body>
</html>
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// PrizeMessage builds the email sent to a visitor who entered a prize draw.
func PrizeMessage(p PrizeNotification) (Message, error) {
	html, err := render(prizeTemplate, p)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       p.Email,
		ToName:   p.Name,
		Subject:  "Prize Information - " + p.PrizeTitle,
		HTML:     html,
		Text:     fmt.Sprintf("Thanks %s! You've entered to win %s at %s.", p.Name, p.PrizeTitle, p.PropertyAddress),
		Category: "prize",
	}, nil
}

// VerificationMessage builds the one-time claim link email.
func VerificationMessage(v Verification) (Message, error) {
	html, err := render(verificationTemplate, v)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       v.Email,
		Subject:  "Confirm your property on Scan for a Prize",
		HTML:     html,
		Text:     "Open this link within 24 hours to confirm your property: " + v.URL,
		Category: "verification",
	}, nil
}
