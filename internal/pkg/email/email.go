// Package email is the templated notifier: callers hand it a template id,
// a recipient and named variables; rendering and transport stay here.
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Notifier is the sink interface the rest of the application sends mail
// through.
type Notifier interface {
	Send(template TemplateID, recipient string, variables map[string]string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	// FrontendURL is injected into templates as site_url
	FrontendURL string
}

// SMTPNotifier implements Notifier over SMTP
type SMTPNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPNotifier creates a new SMTPNotifier
func NewSMTPNotifier(config SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		config: config,
		logger: logger,
	}
}

// Send renders the template with the given variables and mails it.
// Variables not on the template's whitelist are rejected.
func (s *SMTPNotifier) Send(template TemplateID, recipient string, variables map[string]string) error {
	subject, body, err := Render(template, s.withSiteURL(variables))
	if err != nil {
		return err
	}

	// Without credentials the notifier degrades to logging, which keeps
	// development and test environments mail-free.
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("template", string(template)).
			Str("recipient", recipient).
			Str("subject", subject).
			Msg("SMTP credentials not configured - mail not sent")
		return nil
	}

	return s.sendHTMLEmail(recipient, subject, body)
}

func (s *SMTPNotifier) withSiteURL(variables map[string]string) map[string]string {
	merged := make(map[string]string, len(variables)+1)
	for k, v := range variables {
		merged[k] = v
	}
	if _, ok := merged["site_url"]; !ok {
		merged["site_url"] = s.config.FrontendURL
	}
	return merged
}

// Render substitutes named placeholders into the template body and returns
// subject and HTML body. Every supplied variable must be whitelisted for the
// template.
func Render(id TemplateID, variables map[string]string) (subject, body string, err error) {
	tpl, ok := templateBodies[id]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", id)
	}

	allowed := make(map[string]bool, len(templateVariables[id]))
	for _, v := range templateVariables[id] {
		allowed[v] = true
	}
	for name := range variables {
		if !allowed[name] {
			return "", "", fmt.Errorf("variable %q is not allowed in template %q", name, id)
		}
	}

	subject = tpl.subject
	body = tpl.body
	for name, value := range variables {
		placeholder := "{{" + name + "}}"
		subject = strings.ReplaceAll(subject, placeholder, value)
		body = strings.ReplaceAll(body, placeholder, value)
	}
	return subject, body, nil
}

type template struct {
	subject string
	body    string
}

var templateBodies = map[TemplateID]template{
	TemplateAccountExpirationWarning: {
		subject: "Votre compte expire bientôt",
		body:    "<p>Bonjour {{first_name}} {{last_name}},</p><p>Votre compte expirera le {{expiration_date}}. Connectez-vous sur <a href=\"{{site_url}}\">{{site_url}}</a> pour le conserver.</p>",
	},
	TemplateAccountDeleted: {
		subject: "Votre compte a été supprimé",
		body:    "<p>Bonjour {{first_name}} {{last_name}},</p><p>Votre compte inactif a été supprimé. Vous pouvez vous réinscrire sur <a href=\"{{site_url}}\">{{site_url}}</a>.</p>",
	},
	TemplatePasswordExpirationWarning: {
		subject: "Votre mot de passe expire bientôt",
		body:    "<p>Bonjour {{first_name}} {{last_name}},</p><p>Votre mot de passe arrive à expiration. Vous pouvez le renouveler ici : <a href=\"{{reset_url}}\">{{reset_url}}</a>.</p>",
	},
	TemplatePasswordRotated: {
		subject: "Votre mot de passe a été réinitialisé",
		body:    "<p>Bonjour {{first_name}} {{last_name}},</p><p>Votre mot de passe a expiré et a été remplacé par : <strong>{{new_password}}</strong></p><p>Merci de le changer dès votre prochaine connexion sur <a href=\"{{site_url}}\">{{site_url}}</a>.</p>",
	},
	TemplateCharterExpirationWarning: {
		subject: "La charte de votre association expire bientôt",
		body:    "<p>La charte de l'association {{association_name}} expirera le {{expiration_date}}.</p>",
	},
	TemplateCharterExpired: {
		subject: "La charte de votre association a expiré",
		body:    "<p>La charte de l'association {{association_name}} a expiré. Un nouveau dépôt est nécessaire sur <a href=\"{{site_url}}\">{{site_url}}</a>.</p>",
	},
	TemplateDocumentExpirationWarning: {
		subject: "Un document expire bientôt",
		body:    "<p>Le document {{document_name}} expirera le {{expiration_date}}.</p>",
	},
	TemplateDocumentExpired: {
		subject: "Un document a expiré",
		body:    "<p>Le document {{document_name}} a expiré et a été supprimé.</p>",
	},
	TemplateReviewOverdue: {
		subject: "Bilan de projet attendu",
		body:    "<p>Le projet {{project_name}} s'est terminé le {{planned_end_date}} et attend son bilan sur <a href=\"{{site_url}}\">{{site_url}}</a>.</p>",
	},
	TemplateGOAReminder: {
		subject: "Assemblées générales ordinaires en attente",
		body:    "<p>Les associations suivantes n'ont pas déposé de GOA récente : {{association_names}}.</p>",
	},
	TemplateProjectDecision: {
		subject: "Décision sur votre projet",
		body:    "<p>Le projet {{project_name}} a reçu la décision : {{decision}}.</p>",
	},
	TemplateCharterDecision: {
		subject: "Décision sur votre charte",
		body:    "<p>La charte de l'association {{association_name}} a reçu la décision : {{decision}}.</p>",
	},
}

// sendHTMLEmail sends an HTML email
func (s *SMTPNotifier) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth(
		"",
		s.config.Username,
		s.config.Password,
		s.config.Host,
	)

	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	headers["To"] = toEmail
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
		if err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to create SMTP client")
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Quit()

		if err = client.Auth(auth); err != nil {
			s.logger.Error().Err(err).Msg("SMTP authentication failed")
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err = client.Mail(s.config.FromEmail); err != nil {
			return fmt.Errorf("failed to set sender: %w", err)
		}
		if err = client.Rcpt(toEmail); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("failed to get data writer: %w", err)
		}
		if _, err = w.Write([]byte(message)); err != nil {
			return fmt.Errorf("failed to write email message: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("failed to close data writer: %w", err)
		}

		return nil
	}

	err := smtp.SendMail(
		serverAddress,
		auth,
		s.config.FromEmail,
		[]string{toEmail},
		[]byte(message),
	)
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
