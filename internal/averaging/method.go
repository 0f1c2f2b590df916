package averaging

import (
	"fmt"
	"strings"

	apperrors "nucleval/internal/errors"
)

// Method selects an averaging strategy
type Method int

const (
	Weighted Method = iota
	Unweighted
	LWM
	NRM
	Rajeval
	EVM
	Bootstrap
	Iterative
	Best
	Auto
)

var methodNames = map[Method]string{
	Weighted:   "weighted",
	Unweighted: "unweighted",
	LWM:        "lwm",
	NRM:        "nrm",
	Rajeval:    "rajeval",
	EVM:        "evm",
	Bootstrap:  "bootstrap",
	Iterative:  "iterative",
	Best:       "best",
	Auto:       "auto",
}

// String returns the method name
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// IsValid checks if the method is one of the known strategies
func (m Method) IsValid() bool {
	_, ok := methodNames[m]
	return ok
}

// Methods returns all methods in declaration order
func Methods() []Method {
	return []Method{Weighted, Unweighted, LWM, NRM, Rajeval, EVM, Bootstrap, Iterative, Best, Auto}
}

var methodAliases = map[string]Method{
	"wm":    Weighted,
	"uwm":   Unweighted,
	"rt":    Rajeval,
	"fixed": Iterative,
	"huber": Iterative,
}

// ParseMethod resolves a method name, case-insensitively. Short forms such
// as "wm", "uwm" and "rt" are accepted.
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for m, name := range methodNames {
		if name == key {
			return m, nil
		}
	}
	if m, ok := methodAliases[key]; ok {
		return m, nil
	}
	return 0, apperrors.NewValidationError(fmt.Sprintf("unknown averaging method %q", s), nil)
}

// MarshalText encodes the method name
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a method name
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
