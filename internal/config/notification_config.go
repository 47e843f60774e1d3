package config

// NotificationConfig defines configuration for email notifications.
type NotificationConfig struct {
	SMTPServer    string `json:"smtp_server,omitempty" yaml:"smtp_server,omitempty"`
	SMTPPort      int    `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty" validate:"omitempty,min=1,max=65535"`
	EmailUser     string `json:"email_user,omitempty" yaml:"email_user,omitempty"`
	EmailPassword string `json:"email_password,omitempty" yaml:"email_password,omitempty"`
	FromName      string `json:"from_name,omitempty" yaml:"from_name,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration.
// Credentials are read from EMAIL_USER / EMAIL_PASSWORD when left empty.
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		SMTPServer: DefaultSMTPServer,
		SMTPPort:   DefaultSMTPPort,
		FromName:   DefaultFromName,
	}
}

// IsConfigured reports whether the email gateway has credentials.
func (c NotificationConfig) IsConfigured() bool {
	return c.EmailUser != "" && c.EmailPassword != ""
}
