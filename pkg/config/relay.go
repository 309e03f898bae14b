package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"

	"openspace/pkg/logger"
)

// RelayConfig is the subset of settings the notification relay needs. It
// shares keys with Config but skips everything HTTP and storage related.
type RelayConfig struct {
	Notifier           string
	NotificationsTopic string
	SendGridAPIKey     string
	SendGridFromEmail  string
	SendGridFromName   string

	Log *logger.Logger
}

func LoadRelay(serviceName string) *RelayConfig {
	cfg, err := ParseRelay(serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.Log.Info("Relay configuration loaded",
		"notifier", cfg.Notifier,
		"notifications_topic", cfg.NotificationsTopic,
		"sendgrid_key_set", cfg.SendGridAPIKey != "",
		"sendgrid_from_email", cfg.SendGridFromEmail,
	)
	return cfg
}

func ParseRelay(serviceName string) (*RelayConfig, error) {
	_ = godotenv.Load()

	cfg := &RelayConfig{
		Notifier:           strings.ToLower(getEnvStr(EnvNotifier, NotifierSendGrid)),
		NotificationsTopic: getEnvStr(EnvNotificationsTopic, DefaultNotificationsTopic),
		SendGridAPIKey:     getEnvStr(EnvSendGridAPIKey, ""),
		SendGridFromEmail:  getEnvStr(EnvSendGridFromEmail, ""),
		SendGridFromName:   getEnvStr(EnvSendGridFromName, DefaultSendGridFromName),
		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
	}
	return cfg, cfg.Validate()
}

func (cfg *RelayConfig) Validate() error {
	var problems []string

	switch cfg.Notifier {
	case NotifierLog:
	case NotifierSendGrid:
		if cfg.SendGridAPIKey == "" {
			problems = append(problems, "SendGridAPIKey cannot be empty when Notifier is 'sendgrid'")
		}
		if cfg.SendGridFromEmail == "" {
			problems = append(problems, "SendGridFromEmail cannot be empty when Notifier is 'sendgrid'")
		}
	default:
		// the relay is the Kafka consumer; it cannot forward to Kafka again
		problems = append(problems, fmt.Sprintf("Notifier must be one of [%s %s] for the relay, got: %s", NotifierLog, NotifierSendGrid, cfg.Notifier))
	}
	if cfg.NotificationsTopic == "" {
		problems = append(problems, "NotificationsTopic cannot be empty")
	}

	if len(problems) == 0 {
		return nil
	}
	msg := "Relay configuration validation failed:\n"
	for i, p := range problems {
		msg += fmt.Sprintf("  %d. %s\n", i+1, p)
	}
	return fmt.Errorf("%s", msg)
}
