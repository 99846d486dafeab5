package email

import (
	"ratery_backend/internal/logger"
)

// LogProvider пишет письма в лог вместо отправки.
// Используется в development окружении без настроенного SMTP.
type LogProvider struct {
	renderer TemplateRenderer
}

// NewLogProvider создает провайдер для локальной разработки
func NewLogProvider(renderer TemplateRenderer) *LogProvider {
	return &LogProvider{renderer: renderer}
}

func (p *LogProvider) Send(email *Email) error {
	logger.Info("email (not sent, log provider)",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}

func (p *LogProvider) SendVerification(to string, code string) error {
	logger.Info("verification email (not sent, log provider)",
		"to", to,
		"code", code,
	)
	return nil
}

func (p *LogProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	logger.Info("template email (not sent, log provider)",
		"to", to,
		"subject", subject,
		"template", templateName,
	)
	return nil
}

func (p *LogProvider) Validate() error { return nil }

func (p *LogProvider) Close() error { return nil }
