package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит конфигурацию для подключения к Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или "fluent-bit" в Docker
	Port      int    // 24224
	TagPrefix string // общий префикс тегов сервиса, например "appraisal-portal"
	Timeout   time.Duration
	// Async не блокирует запись лога при недоступном Fluent Bit
	Async bool
}

func (c Config) fluentConfig() (fluent.Config, error) {
	if c.TagPrefix == "" {
		return fluent.Config{}, fmt.Errorf("fluentd tag prefix is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fluent.Config{}, fmt.Errorf("invalid fluentd port %d", c.Port)
	}
	return fluent.Config{
		FluentHost: c.Host,
		FluentPort: c.Port,
		TagPrefix:  c.TagPrefix,
		Timeout:    c.Timeout,
		Async:      c.Async,
	}, nil
}

// NewClient создает клиент для Fluent Bit.
// Пинга нет: ошибки соединения проявятся при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	fc, err := cfg.fluentConfig()
	if err != nil {
		return nil, err
	}

	logger, err := fluent.New(fc)
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return logger, nil
}
