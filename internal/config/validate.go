package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Annotate.MaxInputBytes < 0 {
		return fmt.Errorf("annotate.max_input_bytes must be >= 0 (got %d)", c.Annotate.MaxInputBytes)
	}
	if !validClassPrefix(c.Annotate.ClassPrefix) {
		return fmt.Errorf("annotate.class_prefix %q must be letters, digits, '-' or '_'", c.Annotate.ClassPrefix)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0-65535 (got %d)", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be > 0")
	}
	if c.Dictionary.WatchSettle < 0 {
		return fmt.Errorf("dictionary.watch_settle must be >= 0")
	}
	if c.Dictionary.Watch && !c.Dictionary.FromFiles() {
		return fmt.Errorf("dictionary.watch needs phrases_path or words_path")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}
	return nil
}

func validClassPrefix(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
