package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScope() map[string]any {
	context := map[string]any{
		"message": map[string]any{
			"text": "hello there",
			"tags": []any{"vip", "new"},
		},
		"userId": "user-42",
	}
	variables := map[string]any{
		"count":   float64(3),
		"enabled": true,
	}
	nodes := map[string]any{
		"classify": map[string]any{"classification": "negative"},
	}

	return Scope(context, variables, nodes)
}

func TestRender_SinglePlaceholderKeepsType(t *testing.T) {
	scope := testScope()

	testCases := []struct {
		name     string
		input    string
		expected any
	}{
		{name: "number", input: "{{count}}", expected: float64(3)},
		{name: "bool", input: "{{enabled}}", expected: true},
		{name: "string", input: "{{userId}}", expected: "user-42"},
		{name: "nested map", input: "{{message}}", expected: map[string]any{"text": "hello there", "tags": []any{"vip", "new"}}},
		{name: "nested path", input: "{{message.text}}", expected: "hello there"},
		{name: "slice index", input: "{{message.tags.1}}", expected: "new"},
		{name: "spaces inside braces", input: "{{ count }}", expected: float64(3)},
		{name: "surrounding whitespace", input: "  {{count}}  ", expected: float64(3)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Render(tc.input, scope))
		})
	}
}

func TestRender_MixedStrings(t *testing.T) {
	scope := testScope()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "prefix text", input: "user {{userId}} said {{message.text}}", expected: "user user-42 said hello there"},
		{name: "number flattens cleanly", input: "count={{count}}", expected: "count=3"},
		{name: "bool in string", input: "enabled: {{enabled}}", expected: "enabled: true"},
		{name: "two placeholders back to back", input: "{{userId}}{{count}}", expected: "user-423"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Render(tc.input, scope))
		})
	}
}

func TestRender_UnresolvedStaysVerbatim(t *testing.T) {
	scope := testScope()

	assert.Equal(t, "{{missing.path}}", Render("{{missing.path}}", scope))
	assert.Equal(t, "hi {{missing}}", Render("hi {{missing}}", scope))
	assert.Equal(t, "{{message.text.deeper}}", Render("{{message.text.deeper}}", scope))
	assert.Equal(t, "{{message.tags.9}}", Render("{{message.tags.9}}", scope))
}

func TestRender_PrefixedAliases(t *testing.T) {
	scope := testScope()

	assert.Equal(t, "hello there", Render("{{context.message.text}}", scope))
	assert.Equal(t, float64(3), Render("{{variables.count}}", scope))
	assert.Equal(t, "negative", Render("{{nodes.classify.classification}}", scope))
}

func TestRender_NoPlaceholders(t *testing.T) {
	assert.Equal(t, "plain text", Render("plain text", testScope()))
	assert.Equal(t, "", Render("", testScope()))
}

func TestLookup(t *testing.T) {
	scope := testScope()

	value, ok := Lookup(scope, "message.tags.0")
	require.True(t, ok)
	assert.Equal(t, "vip", value)

	_, ok = Lookup(scope, "message.tags.not-a-number")
	assert.False(t, ok)

	_, ok = Lookup(scope, "userId.anything")
	assert.False(t, ok)
}

func TestRenderConfig_DeepWalk(t *testing.T) {
	scope := testScope()

	config := map[string]any{
		"message":  "reply to {{userId}}",
		"priority": "{{count}}",
		"metadata": map[string]any{
			"original": "{{message.text}}",
			"static":   42,
		},
		"recipients": []any{"{{userId}}", "ops-team"},
	}

	rendered := RenderConfig(config, scope)

	assert.Equal(t, "reply to user-42", rendered["message"])
	assert.Equal(t, float64(3), rendered["priority"])
	assert.Equal(t, "hello there", rendered["metadata"].(map[string]any)["original"])
	assert.Equal(t, 42, rendered["metadata"].(map[string]any)["static"])
	assert.Equal(t, []any{"user-42", "ops-team"}, rendered["recipients"])

	// Source config must stay untouched.
	assert.Equal(t, "reply to {{userId}}", config["message"])
	assert.Equal(t, []any{"{{userId}}", "ops-team"}, config["recipients"])
}

func TestStringify_FloatFormatting(t *testing.T) {
	scope := map[string]any{"price": 19.9, "whole": float64(7)}

	assert.Equal(t, "price is 19.9", Render("price is {{price}}", scope))
	assert.Equal(t, "whole is 7", Render("whole is {{whole}}", scope))
}
