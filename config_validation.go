package serial

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("serialport", func(fl validator.FieldLevel) bool {
			return checkPortName(fl.Field().String()) == nil
		})
	})
	return validate
}

// ValidateConfig validates serial port configuration parameters
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(cfg, fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describeFieldError(cfg *Config, fe validator.FieldError) string {
	switch fe.Field() {
	case "PortName":
		if cfg.PortName == "" {
			return "port name cannot be empty"
		}
		return checkPortName(cfg.PortName).Error()
	case "BaudRate":
		return fmt.Sprintf("invalid baud rate %d, must be one of: %s", cfg.BaudRate, fe.Param())
	case "DataBits":
		return fmt.Sprintf("data bits must be 5-8, got: %d", cfg.DataBits)
	case "Parity":
		return fmt.Sprintf("invalid parity value: %d", cfg.Parity)
	case "StopBits":
		return fmt.Sprintf("invalid stop bits value: %d", cfg.StopBits)
	case "ReadTimeout":
		return fmt.Sprintf("read timeout must be positive: %v", cfg.ReadTimeout)
	}
	return fe.Error()
}
