package keycodec

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty string", input: "", expected: ""},
		{name: "Plain key", input: "users", expected: "users"},
		{name: "Dot", input: ".", expected: "%2E"},
		{name: "Dollar", input: "$", expected: "%24"},
		{name: "Hash", input: "#", expected: "%23"},
		{name: "Brackets", input: "[0]", expected: "%5B0%5D"},
		{name: "Slash", input: "a/b", expected: "a%2Fb"},
		{name: "Email address", input: "jane.doe@example.com", expected: "jane%2Edoe@example%2Ecom"},
		{name: "All reserved", input: ".$#[]/", expected: "%2E%24%23%5B%5D%2F"},
		{name: "Percent passes through", input: "100%", expected: "100%"},
		{name: "Unicode passes through", input: "café.menu", expected: "café%2Emenu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.input))
		})
	}
}

func TestEncode_OutputHasNoReservedCharacters(t *testing.T) {
	inputs := []string{"a.b.c", "$$$", "x/y/z", "[[#]]", "mixed.$#[]/key"}

	for _, in := range inputs {
		assert.False(t, strings.ContainsAny(Encode(in), ".$#[]/"), "encoded %q still has reserved characters", in)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty string", input: "", expected: ""},
		{name: "No escapes", input: "users", expected: "users"},
		{name: "Slash escape", input: "a%2Fb", expected: "a/b"},
		{name: "Lowercase hex", input: "a%2fb", expected: "a/b"},
		{name: "Trailing percent", input: "100%", expected: "100%"},
		{name: "Single hex digit", input: "100%2", expected: "100%2"},
		{name: "Non-hex digits", input: "%zz", expected: "%zz"},
		{name: "Non-reserved escape", input: "%41BC", expected: "ABC"},
		{name: "Adjacent escapes", input: "%5B%5D", expected: "[]"},
		{name: "Percent before escape", input: "%%2E", expected: "%."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decode(tt.input))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"simple",
		"jane.doe@example.com",
		"path/with/slashes",
		"$priority",
		"#tag[1]",
		"ünïcödé.key",
		"50% off",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, Decode(Encode(in)))
		})
	}
}

func TestRoundTrip_EscapeShapedInputIsNotPreserved(t *testing.T) {
	// A literal escape in the input is indistinguishable from one Encode produced.
	assert.Equal(t, "a/b", Decode(Encode("a%2Fb")))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "users/jane%2Edoe/posts", Join("users", "jane.doe", "posts"))
	assert.Equal(t, "a%2Fb", Join("a/b"))
	assert.Equal(t, "", Join())
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "x.y", Decode(Encode("x.y")))
		}()
	}
	wg.Wait()
}
