package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Drawing limits. Larger networks are accepted by the trainer but are
	// unreadable on screen and produce O(n^2) links.
	MaxLayers    = 32
	MaxLayerSize = 512
	MaxLinks     = 65536
)

// ErrTopology wraps every topology rejection.
var ErrTopology = errors.New("invalid topology")

func init() {
	validate = validator.New()
	validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 && fl.Field().Kind() != reflect.Float32 {
			return false
		}
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
}

// MoveRequest is a request to drag a node to a new position.
type MoveRequest struct {
	X float64 `json:"x" validate:"finite"`
	Y float64 `json:"y" validate:"finite"`
}

// ControlRequest names an engine control action.
type ControlRequest struct {
	Action string `json:"action" validate:"required,oneof=reset stop start"`
}

// SourceRequest describes a telemetry endpoint.
type SourceRequest struct {
	Transport string `json:"transport" validate:"required,oneof=websocket redis nng zmq"`
	URL       string `json:"url" validate:"required"`
	Channel   string `json:"channel" validate:"omitempty,max=256"`
}

// ValidateTopology checks that t can be drawn: at least an input and an
// output layer, every layer positive, and within the drawing limits.
func ValidateTopology(t *telemetry.Topology) error {
	if t == nil {
		return fmt.Errorf("%w: topology cannot be nil", ErrTopology)
	}
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrTopology, formatValidationError(err))
	}
	return ValidateLayers(t.Layers())
}

// ValidateLayers applies the topology rules to a layer-size list.
func ValidateLayers(layers []int) error {
	if len(layers) < 2 {
		return fmt.Errorf("%w: need at least 2 layers, got %d", ErrTopology, len(layers))
	}
	if len(layers) > MaxLayers {
		return fmt.Errorf("%w: maximum %d layers allowed, got %d", ErrTopology, MaxLayers, len(layers))
	}
	links := 0
	for i, n := range layers {
		if n <= 0 {
			return fmt.Errorf("%w: layer %d has %d nodes", ErrTopology, i, n)
		}
		if n > MaxLayerSize {
			return fmt.Errorf("%w: layer %d has %d nodes, maximum %d", ErrTopology, i, n, MaxLayerSize)
		}
		if i > 0 {
			links += layers[i-1] * n
		}
	}
	if links > MaxLinks {
		return fmt.Errorf("%w: %d links exceed maximum %d", ErrTopology, links, MaxLinks)
	}
	return nil
}

// ValidateNodeRef checks that (layer, index) names a node of layers.
func ValidateNodeRef(layers []int, layer, index int) error {
	if layer < 0 || layer >= len(layers) {
		return fmt.Errorf("layer %d out of range [0, %d)", layer, len(layers))
	}
	if index < 0 || index >= layers[layer] {
		return fmt.Errorf("index %d out of range [0, %d) for layer %d", index, layers[layer], layer)
	}
	return nil
}

// ValidateMoveRequest validates a node move request.
func ValidateMoveRequest(req *MoveRequest) error {
	if req == nil {
		return errors.New("move request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateControlRequest validates an engine control request.
func ValidateControlRequest(req *ControlRequest) error {
	if req == nil {
		return errors.New("control request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateSourceRequest validates a telemetry endpoint description.
func ValidateSourceRequest(req *SourceRequest) error {
	if req == nil {
		return errors.New("source request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if req.Transport == "websocket" {
		u, err := url.Parse(req.URL)
		if err != nil {
			return fmt.Errorf("URL: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("URL: websocket sources need a ws:// or wss:// URL, got %q", req.URL)
		}
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "finite":
			return fmt.Errorf("%s: must be a finite number", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
