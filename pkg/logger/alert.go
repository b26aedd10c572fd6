package logger

import (
	"fmt"
	"time"

	"price-reconciler/config"
	"price-reconciler/pkg/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap/zapcore"
)

// AlertCore forwards entries carrying send_alert=true at or above minLevel to
// a webhook. Delivery is asynchronous and best effort.
type AlertCore struct {
	zapcore.Core
	client     *resty.Client
	webhookURL string
	minLevel   zapcore.Level
	fields     []zapcore.Field
}

type AlertPayload struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields"`
	Time    string                 `json:"time"`
}

func NewAlertCore(cfg config.Alert) (*AlertCore, error) {
	minLevel := zapcore.ErrorLevel
	if cfg.MinLevel != "" {
		if err := minLevel.UnmarshalText([]byte(cfg.MinLevel)); err != nil {
			return nil, fmt.Errorf("invalid alert level: %w", err)
		}
	}
	return &AlertCore{
		client:     resty.New().SetTimeout(5 * time.Second),
		webhookURL: cfg.WebhookURL,
		minLevel:   minLevel,
	}, nil
}

// Wrap returns a copy of the alert core that delegates regular logging to core.
func (a *AlertCore) Wrap(core zapcore.Core) zapcore.Core {
	clone := *a
	clone.Core = core
	return &clone
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *a
	clone.Core = a.Core.With(fields)
	clone.fields = append(append([]zapcore.Field{}, a.fields...), fields...)
	return &clone
}

// Check lets the wrapped core (and its sampler) decide on regular output and
// only adds the alert hook for entries at or above minLevel.
func (a *AlertCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	ce = a.Core.Check(entry, ce)
	if entry.Level >= a.minLevel {
		ce = ce.AddCore(entry, a)
	}
	return ce
}

// Write only delivers the alert; the wrapped core writes the entry itself
// because Check registers it separately.
func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, a.fields...), fields...)
	if entry.Level >= a.minLevel && shouldAlert(all) {
		payload := buildAlertPayload(entry, all)
		utils.GoSafe(func() { a.send(payload) })
	}
	return nil
}

func (a *AlertCore) send(payload AlertPayload) {
	_, _ = a.client.R().SetBody(payload).Post(a.webhookURL)
}

func shouldAlert(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == KeySendAlert && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

func buildAlertPayload(entry zapcore.Entry, fields []zapcore.Field) AlertPayload {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == KeySendAlert {
			continue
		}
		f.AddTo(enc)
	}
	return AlertPayload{
		Level:   entry.Level.CapitalString(),
		Message: entry.Message,
		Fields:  enc.Fields,
		Time:    entry.Time.Format(time.RFC3339),
	}
}
