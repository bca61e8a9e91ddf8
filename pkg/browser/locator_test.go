package browser

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocator_Valid(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		value    string
		selector string
	}{
		{"plain id", ByID, "Hero__Search", "#Hero__Search"},
		{"cookiebot id", ByID, "CybotCookiebotDialogBodyButtonAccept", "#CybotCookiebotDialogBodyButtonAccept"},
		{"id needing escape", ByID, "1st:item", `[id="1st:item"]`},
		{"class", ByCSS, ".gtm-searchDestination", ".gtm-searchDestination"},
		{"attribute", ByCSS, `a[href="/great-western-greenway"]`, `a[href="/great-western-greenway"]`},
		{"xpath", ByXPath, "//a[contains(@class, 'gtm')]", "//a[contains(@class, 'gtm')]"},
		{"descendant combinator", ByCSS, "#Hero__Results > li a.gtm-searchDestination", "#Hero__Results > li a.gtm-searchDestination"},
		{"indexed xpath", ByXPath, "(//a[@class='gtm-searchDestination'])[1]", "(//a[@class='gtm-searchDestination'])[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLocator(tt.strategy, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.selector, l.Selector())
		})
	}
}

func TestNewLocator_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		value    string
	}{
		{"empty", ByCSS, ""},
		{"blank", ByID, "   "},
		{"id with hash", ByID, "#Hero__Search"},
		{"id with space", ByID, "Hero Search"},
		{"unclosed bracket", ByCSS, "a[href='x'"},
		{"unterminated quote", ByCSS, `a[title="x]`},
		{"stray paren", ByCSS, "div)"},
		{"repeated combinator", ByCSS, "div >>> p"},
		{"double dot class", ByCSS, "..x"},
		{"dangling combinator", ByCSS, "ul >"},
		{"unknown pseudo class", ByCSS, "a:hoverish"},
		{"relative xpath", ByXPath, "a[@id]"},
		{"unclosed xpath predicate", ByXPath, "//a["},
		{"xpath missing operand", ByXPath, "//a[@id=]"},
		{"unclosed xpath group", ByXPath, "(//a"},
		{"unknown strategy", Strategy(42), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocator(tt.strategy, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLocator))
		})
	}
}

func TestMustLocator_Panics(t *testing.T) {
	assert.Panics(t, func() { ID("#oops") })
	assert.NotPanics(t, func() { CSS(".ok") })
}

func TestLocator_String(t *testing.T) {
	assert.Equal(t, "id=Hero__Search", ID("Hero__Search").String())
	assert.Equal(t, "css=.gtm-searchDestination", CSS(".gtm-searchDestination").String())
	assert.Equal(t, "xpath=//a", XPath("//a").String())
	assert.Equal(t, "unknown", Strategy(9).String())
}
