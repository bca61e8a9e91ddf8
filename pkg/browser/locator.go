package browser

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
)

// Strategy selects how a Locator value is resolved against the DOM.
type Strategy int

const (
	// ByID matches the element whose id attribute equals the value.
	ByID Strategy = iota
	// ByCSS matches elements with a CSS selector.
	ByCSS
	// ByXPath matches elements with an XPath expression.
	ByXPath
)

// String returns a string representation of the Strategy.
func (s Strategy) String() string {
	switch s {
	case ByID:
		return "id"
	case ByCSS:
		return "css"
	case ByXPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// Locator identifies one or more DOM elements.
// Construct with NewLocator (or ID, CSS, XPath for constants) so the value is
// validated once instead of failing later inside the browser.
type Locator struct {
	Strategy Strategy
	Value    string
}

// NewLocator validates value for the strategy and returns a Locator.
func NewLocator(strategy Strategy, value string) (Locator, error) {
	if strings.TrimSpace(value) == "" {
		return Locator{}, errors.Wrapf(ErrInvalidLocator, "empty %s value", strategy)
	}

	switch strategy {
	case ByID:
		if strings.HasPrefix(value, "#") {
			return Locator{}, errors.Wrapf(ErrInvalidLocator, "id %q must not start with '#'", value)
		}
		if strings.ContainsAny(value, " \t\n") {
			return Locator{}, errors.Wrapf(ErrInvalidLocator, "id %q contains whitespace", value)
		}
	case ByCSS:
		if _, err := cascadia.Compile(value); err != nil {
			return Locator{}, errors.Wrapf(ErrInvalidLocator, "css %q: %v", value, err)
		}
	case ByXPath:
		if !strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "(") && !strings.HasPrefix(value, ".") {
			return Locator{}, errors.Wrapf(ErrInvalidLocator, "xpath %q must start with '/', '(' or '.'", value)
		}
		if _, err := xpath.Compile(value); err != nil {
			return Locator{}, errors.Wrapf(ErrInvalidLocator, "xpath %q: %v", value, err)
		}
	default:
		return Locator{}, errors.Wrapf(ErrInvalidLocator, "unknown strategy %d", int(strategy))
	}

	return Locator{Strategy: strategy, Value: value}, nil
}

// MustLocator is like NewLocator but panics on invalid input.
// Intended for package-level selector constants.
func MustLocator(strategy Strategy, value string) Locator {
	l, err := NewLocator(strategy, value)
	if err != nil {
		panic(err)
	}
	return l
}

// ID returns a Locator matching an element id.
func ID(id string) Locator { return MustLocator(ByID, id) }

// CSS returns a Locator matching a CSS selector.
func CSS(selector string) Locator { return MustLocator(ByCSS, selector) }

// XPath returns a Locator matching an XPath expression.
func XPath(expr string) Locator { return MustLocator(ByXPath, expr) }

// Selector returns the expression handed to the browser: a CSS selector for
// ByID and ByCSS, the raw expression for ByXPath.
func (l Locator) Selector() string {
	switch l.Strategy {
	case ByID:
		if isPlainIdent(l.Value) {
			return "#" + l.Value
		}
		return fmt.Sprintf("[id=%q]", l.Value)
	default:
		return l.Value
	}
}

func (l Locator) String() string {
	return l.Strategy.String() + "=" + l.Value
}

// isPlainIdent reports whether id can be used after '#' without escaping.
func isPlainIdent(id string) bool {
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
