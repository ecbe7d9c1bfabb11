package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// PasswordResetData holds data for the password reset email.
type PasswordResetData struct {
	To        string
	ResetLink string
	ExpiresIn string // e.g., "30 minutes"
}

// BuildPasswordResetEmail creates a reset email with HTML and text bodies.
func BuildPasswordResetEmail(data PasswordResetData) Email {
	return Email{
		To:       data.To,
		Subject:  "Επαναφορά κωδικού πρόσβασης",
		TextBody: buildResetText(data),
		HTMLBody: buildResetHTML(data),
	}
}

func buildResetText(data PasswordResetData) string {
	var buf bytes.Buffer
	buf.WriteString("Ζητήθηκε επαναφορά του κωδικού πρόσβασής σας.\n\n")
	buf.WriteString("Ακολουθήστε τον σύνδεσμο για να ορίσετε νέο κωδικό:\n")
	buf.WriteString(data.ResetLink + "\n\n")
	buf.WriteString(fmt.Sprintf("Ο σύνδεσμος λήγει σε %s.\n\n", data.ExpiresIn))
	buf.WriteString("Αν δεν ζητήσατε εσείς την επαναφορά, αγνοήστε αυτό το μήνυμα.\n")
	return buf.String()
}

func buildResetHTML(data PasswordResetData) string {
	tmpl := template.Must(template.New("reset").Parse(resetHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const resetHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Επαναφορά κωδικού</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Ζητήθηκε επαναφορά του κωδικού πρόσβασής σας.
              </p>
              <p style="margin: 0 0 24px; text-align: center;">
                <a href="{{.ResetLink}}" style="display: inline-block; padding: 12px 24px; background-color: #4f46e5; color: #ffffff; border-radius: 6px; text-decoration: none; font-weight: 600;">Ορισμός νέου κωδικού</a>
              </p>
              <p style="margin: 0; font-size: 14px; color: #6b7280;">
                Ο σύνδεσμος λήγει σε {{.ExpiresIn}}. Αν δεν ζητήσατε εσείς την επαναφορά, αγνοήστε αυτό το μήνυμα.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
