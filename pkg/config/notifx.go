package config

// NotifxConfig configures the password reset notice.
type NotifxConfig struct {
	// Provider is "ses", "console" or "none"
	Provider    string
	FromAddress string
	AppName     string
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:    getEnv("NOTIFX_PROVIDER", "none"),
		FromAddress: getEnv("NOTIFX_FROM_ADDRESS", getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com")),
		AppName:     getEnv("NOTIFX_APP_NAME", "Nimbus"),
	}
}
