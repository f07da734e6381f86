package components

import (
	"errors"
	"fmt"
)

// ErrUnknownResourceKind is returned when parsing an unsupported category.
var ErrUnknownResourceKind = errors.New("unknown resource kind")

// ResourceKind is the category of an environmental resource.
type ResourceKind uint8

const (
	ResourceLight ResourceKind = iota
	ResourceWater
	ResourceSupport
	ResourceObstacle
)

var resourceKindNames = [...]string{
	ResourceLight:    "light",
	ResourceWater:    "water",
	ResourceSupport:  "support",
	ResourceObstacle: "obstacle",
}

// String returns the lowercase category name.
func (k ResourceKind) String() string {
	if int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return fmt.Sprintf("ResourceKind(%d)", uint8(k))
}

// Valid reports whether k is one of the four known categories.
func (k ResourceKind) Valid() bool {
	return int(k) < len(resourceKindNames)
}

// ParseResourceKind maps a category name to its ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	for i, name := range resourceKindNames {
		if name == s {
			return ResourceKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownResourceKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ResourceKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownResourceKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ResourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ResourcePoint is an immutable field sample: a point source of light,
// water, support or obstruction.
type ResourcePoint struct {
	Position  Vector2D
	Intensity float64 // (0, 1]
	Kind      ResourceKind
}
