package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("telemetry")
	cv.Required("url", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}
	if !strings.HasPrefix(cv.Errors()[0].Error(), "telemetry.url:") {
		t.Errorf("Expected section-qualified error, got %v", cv.Errors()[0])
	}

	cv2 := NewConfigValidator("telemetry")
	cv2.Required("url", "ws://localhost:5000/ws")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_RangeInt(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		min       int
		max       int
		expectErr bool
	}{
		{"below range", 0, 1, 10, true},
		{"above range", 15, 1, 10, true},
		{"at min", 1, 1, 10, false},
		{"at max", 10, 1, 10, false},
		{"in range", 5, 1, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("buffer")
			cv.RangeInt("size", tt.value, tt.min, tt.max)

			if tt.expectErr && !cv.HasErrors() {
				t.Error("Expected error")
			}
			if !tt.expectErr && cv.HasErrors() {
				t.Errorf("Unexpected error: %v", cv.Validate())
			}
		})
	}
}

func TestConfigValidator_RangeFloat(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		expectErr bool
	}{
		{"inside", 0.5, false},
		{"lower bound", -1, false},
		{"upper bound", 1, false},
		{"above", 1.5, true},
		{"NaN", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("firing")
			cv.RangeFloat("threshold", tt.value, -1, 1)

			if tt.expectErr != cv.HasErrors() {
				t.Errorf("RangeFloat(%v) errors = %v, want %v", tt.value, cv.Errors(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_MinDuration(t *testing.T) {
	cv := NewConfigValidator("telemetry")
	cv.MinDuration("reconnect_delay", 5*time.Millisecond, 10*time.Millisecond)

	if !cv.HasErrors() {
		t.Error("Expected error for duration below minimum")
	}

	cv2 := NewConfigValidator("telemetry")
	cv2.MinDuration("reconnect_delay", time.Second, 10*time.Millisecond)

	if cv2.HasErrors() {
		t.Error("Expected no error for duration at or above minimum")
	}
}

func TestConfigValidator_RangeDuration(t *testing.T) {
	cv := NewConfigValidator("popup")
	cv.RangeDuration("hide_delay", 10*time.Second, 0, 5*time.Second)

	if !cv.HasErrors() {
		t.Error("Expected error for duration above range")
	}

	cv2 := NewConfigValidator("popup")
	cv2.RangeDuration("hide_delay", 300*time.Millisecond, 0, 5*time.Second)

	if cv2.HasErrors() {
		t.Error("Expected no error for duration in range")
	}
}

func TestConfigValidator_Positive(t *testing.T) {
	cv := NewConfigValidator("viewport")
	cv.Positive("width", 0)

	if !cv.HasErrors() {
		t.Error("Expected error for zero value")
	}

	cv2 := NewConfigValidator("viewport")
	cv2.Positive("width", -5)

	if !cv2.HasErrors() {
		t.Error("Expected error for negative value")
	}

	cv3 := NewConfigValidator("viewport")
	cv3.Positive("width", 960)

	if cv3.HasErrors() {
		t.Error("Expected no error for positive value")
	}
}

func TestConfigValidator_PositiveFloat(t *testing.T) {
	for _, bad := range []float64{0, -1, math.Inf(1), math.NaN()} {
		cv := NewConfigValidator("animation")
		cv.PositiveFloat("scale_factor", bad)
		if !cv.HasErrors() {
			t.Errorf("Expected error for %v", bad)
		}
	}

	cv := NewConfigValidator("animation")
	cv.PositiveFloat("scale_factor", 50)
	if cv.HasErrors() {
		t.Error("Expected no error for positive value")
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"debug", "info", "warn", "error"}

	cv := NewConfigValidator("log")
	cv.OneOf("level", "trace", allowed)

	if !cv.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}

	cv2 := NewConfigValidator("log")
	cv2.OneOf("level", "info", allowed)

	if cv2.HasErrors() {
		t.Error("Expected no error for allowed value")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("custom validation failed")
	cv := NewConfigValidator("topology")
	cv.Custom("layers", func() error {
		return sentinel
	})

	if !cv.HasErrors() {
		t.Error("Expected error from custom validation")
	}
	if !errors.Is(cv.Validate(), sentinel) {
		t.Error("Expected custom error to be wrapped")
	}

	cv2 := NewConfigValidator("topology")
	cv2.Custom("layers", func() error {
		return nil
	})

	if cv2.HasErrors() {
		t.Error("Expected no error from passing custom validation")
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("telemetry")
	cv.When(true, func(v *ConfigValidator) {
		v.Required("url", "")
	})

	if !cv.HasErrors() {
		t.Error("Expected error when condition is true")
	}

	cv2 := NewConfigValidator("telemetry")
	cv2.When(false, func(v *ConfigValidator) {
		v.Required("url", "")
	})

	if cv2.HasErrors() {
		t.Error("Expected no error when condition is false")
	}
}

func TestConfigValidator_Chaining(t *testing.T) {
	cv := NewConfigValidator("server")
	cv.Required("addr", ":8080").
		RangeInt("buffer", 16, 1, 1024).
		MinDuration("shutdown_timeout", 5*time.Second, time.Second).
		Positive("workers", 4)

	if cv.HasErrors() {
		t.Errorf("Expected no errors for valid config, got: %v", cv.Validate())
	}
}

func TestConfigValidator_Validate(t *testing.T) {
	cv := NewConfigValidator("viewport")
	cv.Positive("width", 0).
		Positive("height", -1).
		MinDuration("resize_debounce", 0, time.Millisecond)

	if len(cv.Errors()) != 3 {
		t.Fatalf("Expected 3 errors, got %d", len(cv.Errors()))
	}
	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected error from Validate()")
	}
	for _, field := range []string{"viewport.width", "viewport.height", "viewport.resize_debounce"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Expected joined error to mention %s, got %v", field, err)
		}
	}

	if err := NewConfigValidator("viewport").Positive("width", 1).Validate(); err != nil {
		t.Errorf("Expected no error from Validate(), got: %v", err)
	}
}

func TestDefaultOr(t *testing.T) {
	if DefaultOr("", "websocket") != "websocket" {
		t.Error("Expected default for empty string")
	}
	if DefaultOr("redis", "websocket") != "redis" {
		t.Error("Expected value for non-empty string")
	}
}

func TestDefaultOrInt(t *testing.T) {
	if DefaultOrInt(0, 10) != 10 {
		t.Error("Expected default for zero")
	}
	if DefaultOrInt(-5, 10) != 10 {
		t.Error("Expected default for negative")
	}
	if DefaultOrInt(5, 10) != 5 {
		t.Error("Expected value for positive")
	}
}

func TestDefaultOrDuration(t *testing.T) {
	if DefaultOrDuration(0, 5*time.Second) != 5*time.Second {
		t.Error("Expected default for zero duration")
	}
	if DefaultOrDuration(-1*time.Second, 5*time.Second) != 5*time.Second {
		t.Error("Expected default for negative duration")
	}
	if DefaultOrDuration(10*time.Second, 5*time.Second) != 10*time.Second {
		t.Error("Expected value for positive duration")
	}
}

func TestClampDuration(t *testing.T) {
	tests := []struct {
		value, min, max, expected time.Duration
	}{
		{5 * time.Second, 1 * time.Second, 10 * time.Second, 5 * time.Second},
		{500 * time.Millisecond, 1 * time.Second, 10 * time.Second, 1 * time.Second},
		{15 * time.Second, 1 * time.Second, 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		result := ClampDuration(tt.value, tt.min, tt.max)
		if result != tt.expected {
			t.Errorf("ClampDuration(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, result, tt.expected)
		}
	}
}

type viewportSection struct {
	Width  int
	Height int
}

func (v *viewportSection) Validate() error {
	return NewConfigValidator("viewport").
		Positive("width", v.Width).
		Positive("height", v.Height).
		Validate()
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(&viewportSection{Width: 960, Height: 540}); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
	if err := ValidateConfig(&viewportSection{}); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	err := ValidateConfig(nil)
	if err == nil {
		t.Error("Expected error for nil config")
	}
}
