package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"task_practice_bot/internal/infra/config"

	"github.com/ecodeclub/ekit/slice"
	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// base carries the service name into every component entry.
var base = logrus.NewEntry(Log)

const redacted = "[REDACTED]"

// Init configures the global logger for one of the binaries ("bot" or "worker").
func Init(cfg *config.AppConfig, service string) {
	configure(Log, cfg, os.Stdout)
	base = Log.WithField("service", service)

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
	Log.Debugf("Log format set for environment: %s", cfg.Environment)
}

func configure(l *logrus.Logger, cfg *config.AppConfig, out io.Writer) {
	l.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		l.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetLevel(level)
	}

	if cfg.Environment == "production" || cfg.Environment == "staging" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	l.ReplaceHooks(make(logrus.LevelHooks))
	if secrets := secretsOf(cfg); len(secrets) > 0 {
		l.AddHook(&redactHook{secrets: secrets})
	}
}

// secretsOf lists the credentials that must never reach the log output.
func secretsOf(cfg *config.AppConfig) []string {
	return slice.FilterMap([]string{
		cfg.TelegramToken, cfg.TelegramWebhookSecret, cfg.SupabaseKey,
		cfg.MistralAPIKey, cfg.OpenAIAPIKey, cfg.ZhipuAPIKey,
	}, func(_ int, s string) (string, bool) {
		return s, s != ""
	})
}

// redactHook masks credentials in messages and fields. Telebot puts the bot token
// into request URLs, and those URLs end up in transport errors.
type redactHook struct {
	secrets []string
}

func (h *redactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *redactHook) Fire(e *logrus.Entry) error {
	e.Message = h.mask(e.Message)
	for k, v := range e.Data {
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case error:
			s = val.Error()
		case fmt.Stringer:
			s = val.String()
		default:
			continue
		}
		if masked := h.mask(s); masked != s {
			e.Data[k] = masked
		}
	}
	return nil
}

func (h *redactHook) mask(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}

// Component returns an entry tagged with the service and component name.
func Component(name string) *logrus.Entry {
	return base.WithField("component", name)
}
