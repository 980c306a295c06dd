package revisionable

import (
	"strings"
	"sync"
	"time"
)

// FormatFunc renders value using the options that follow the directive prefix,
// e.g. "Yes|No" for the rule "boolean:Yes|No".
type FormatFunc func(value, options string) string

// FieldFormatter applies formatting rules of the form "<directive>:<options>".
// Directives are looked up by prefix, so callers can register their own.
type FieldFormatter struct {
	mu         sync.RWMutex
	directives map[string]FormatFunc
}

func NewFieldFormatter() *FieldFormatter {
	f := &FieldFormatter{directives: make(map[string]FormatFunc)}
	f.Register("boolean", formatBoolean)
	f.Register("string", formatString)
	f.Register("isEmpty", formatIsEmpty)
	f.Register("options", formatOptions)
	f.Register("datetime", formatDatetime)
	return f
}

func (f *FieldFormatter) Register(directive string, fn FormatFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directives[directive] = fn
}

// Format renders value with the rule registered for key. Missing rules, rules
// without a directive and unknown directives return value unchanged.
func (f *FieldFormatter) Format(key, value string, rules map[string]string) string {
	rule, ok := rules[key]
	if !ok {
		return value
	}
	directive, options, found := strings.Cut(rule, ":")
	if !found {
		return value
	}

	f.mu.RLock()
	fn, ok := f.directives[directive]
	f.mu.RUnlock()
	if !ok {
		return value
	}
	return fn(value, options)
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false":
		return false
	}
	return true
}

func choice(cond bool, options string) string {
	opts := strings.Split(options, "|")
	if len(opts) != 2 {
		opts = []string{"Yes", "No"}
	}
	if cond {
		return opts[0]
	}
	return opts[1]
}

func formatBoolean(value, options string) string {
	return choice(truthy(value), options)
}

func formatString(value, template string) string {
	return strings.Replace(template, "%s", value, 1)
}

// formatIsEmpty picks the first option for an empty value and the second otherwise;
// a %s in the chosen option is replaced with the value.
func formatIsEmpty(value, options string) string {
	return strings.Replace(choice(value == "", options), "%s", value, 1)
}

// formatOptions maps stored values to labels: "options:d.Draft|p.Published".
func formatOptions(value, options string) string {
	for _, option := range strings.Split(options, "|") {
		k, v, ok := strings.Cut(option, ".")
		if ok && k == value {
			return v
		}
	}
	return value
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatDatetime re-renders a stored timestamp with a Go time layout.
func formatDatetime(value, layout string) string {
	for _, l := range datetimeLayouts {
		if t, err := time.Parse(l, value); err == nil {
			return t.Format(layout)
		}
	}
	return value
}
