package analytics

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"firebasebindings/internal/binding"
	"firebasebindings/pkg/strcase"
)

// Event is one analytics event.
type Event interface {
	Name() string
	Params() map[string]any
}

// PageView represents a screen within an app; one page might host several.
type PageView struct {
	Title    string
	Location string
	Path     string
}

func (PageView) Name() string { return "page_view" }

func (p PageView) Params() map[string]any {
	return binding.JSONWithoutNulls(
		binding.F("title", binding.Optional(p.Title)),
		binding.F("location", binding.Optional(p.Location)),
		binding.F("path", binding.Optional(p.Path)),
	)
}

type customEvent struct {
	name   string
	params map[string]any
}

func (e customEvent) Name() string           { return e.name }
func (e customEvent) Params() map[string]any { return maps.Clone(e.params) }

const maxEventNameLength = 40

var eventNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Custom builds an event with any name. A TitleCamelCase name such as
// "LevelUp" is sent as "level_up"; other names are sent as given.
func Custom(name string, params map[string]any) (Event, error) {
	if strings.TrimSpace(name) == "" {
		return nil, strcase.ErrBlankIdentifier
	}
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		snake, err := strcase.TitleCamelToSnake(name)
		if err != nil {
			return nil, err
		}
		name = snake
	}
	if len(name) > maxEventNameLength || !eventNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: event name %q", binding.ErrInvalidArgument, name)
	}
	return customEvent{name: name, params: maps.Clone(params)}, nil
}
