package services

import (
	"fmt"
	"log"
	"strings"

	"project_flow_app_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
	}
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// SendEmailAsync sends an email in a goroutine, logging failures
func SendEmailAsync(cfg *config.Config, email *Email) {
	go func() {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending email to %v: %v", email.To, err)
		}
	}()
}

// BuildWelcomeEmail builds the welcome message for a newly created user
func BuildWelcomeEmail(cfg *config.Config, toEmail, userName string) *Email {
	text := fmt.Sprintf(
		"Hi %s,\n\nAn account has been created for you on ProjectFlow.\n\nSign in at %s/login to start tracking your time.\n",
		userName, cfg.AppURL,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>An account has been created for you on ProjectFlow.</p><p><a href=\"%s/login\">Sign in</a> to start tracking your time.</p>",
		userName, cfg.AppURL,
	)
	return &Email{
		To:       []string{toEmail},
		Subject:  "Welcome to ProjectFlow",
		HTMLBody: html,
		TextBody: text,
	}
}

// BuildOverdueTasksEmail builds the reminder message listing a user's overdue tasks
func BuildOverdueTasksEmail(cfg *config.Config, toEmail, userName string, taskTitles []string) *Email {
	var textList, htmlList strings.Builder
	for _, title := range taskTitles {
		textList.WriteString("  - " + title + "\n")
		htmlList.WriteString("<li>" + title + "</li>")
	}

	text := fmt.Sprintf(
		"Hi %s,\n\nThe following tasks assigned to you are past their due date:\n\n%s\nReview them at %s/dashboard.\n",
		userName, textList.String(), cfg.AppURL,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>The following tasks assigned to you are past their due date:</p><ul>%s</ul><p><a href=\"%s/dashboard\">Review your tasks</a>.</p>",
		userName, htmlList.String(), cfg.AppURL,
	)
	return &Email{
		To:       []string{toEmail},
		Subject:  fmt.Sprintf("You have %d overdue task(s)", len(taskTitles)),
		HTMLBody: html,
		TextBody: text,
	}
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}
