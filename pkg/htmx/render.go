package htmx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Renderable is the interface for OOB components.
// Compatible with templ.Component.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// event is a client-side event raised through an HX-Trigger header.
type event struct {
	detail any
	name   string
}

// Config holds HTMX render configuration.
type Config struct {
	OOBComponents []Renderable
	Retarget      string
	Reswap        SwapStrategy
	PushURL       string
	triggers      []event
	afterSettle   []event
	Refresh       bool
}

// RenderOption configures HTMX render behavior.
type RenderOption func(*Config)

// NewConfig creates a Config from options.
func NewConfig(opts ...RenderOption) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ApplyHeaders sets HTMX headers on the response.
// Must be called before WriteHeader.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	if c == nil {
		return
	}

	h := w.Header()

	if c.Retarget != "" {
		h.Set(HeaderHXRetarget, c.Retarget)
	}
	if c.Reswap != "" {
		h.Set(HeaderHXReswap, string(c.Reswap))
	}
	if c.PushURL != "" {
		h.Set(HeaderHXPushURL, c.PushURL)
	}
	if v := encodeEvents(c.triggers); v != "" {
		h.Set(HeaderHXTrigger, v)
	}
	if v := encodeEvents(c.afterSettle); v != "" {
		h.Set(HeaderHXTriggerAfterSettle, v)
	}
	if c.Refresh {
		h.Set(HeaderHXRefresh, "true")
	}
}

// encodeEvents uses the comma form when no event carries a detail and the
// JSON object form otherwise.
func encodeEvents(events []event) string {
	if len(events) == 0 {
		return ""
	}

	withDetail := false
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.name)
		if e.detail != nil {
			withDetail = true
		}
	}
	if !withDetail {
		return strings.Join(names, ", ")
	}

	obj := make(map[string]any, len(events))
	for _, e := range events {
		obj[e.name] = e.detail
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return strings.Join(names, ", ")
	}
	return string(data)
}

// WithOOB appends out-of-band components to render after the main component.
// Components must include id and hx-swap-oob attributes.
func WithOOB(components ...Renderable) RenderOption {
	return func(c *Config) {
		c.OOBComponents = append(c.OOBComponents, components...)
	}
}

// WithRetarget sets the HX-Retarget header to change the target element.
func WithRetarget(selector string) RenderOption {
	return func(c *Config) {
		c.Retarget = selector
	}
}

// WithReswap sets the HX-Reswap header to change the swap strategy.
func WithReswap(strategy SwapStrategy) RenderOption {
	return func(c *Config) {
		c.Reswap = strategy
	}
}

// WithPushURL sets the HX-Push-Url header. Pass "false" to prevent the update.
func WithPushURL(url string) RenderOption {
	return func(c *Config) {
		c.PushURL = url
	}
}

// WithTrigger raises client-side events without payload.
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) {
		for _, name := range events {
			c.triggers = append(c.triggers, event{name: name})
		}
	}
}

// WithTriggerDetail raises a client-side event whose detail is the JSON
// encoding of detail. Listeners read it from event.detail.
func WithTriggerDetail(name string, detail any) RenderOption {
	return func(c *Config) {
		c.triggers = append(c.triggers, event{name: name, detail: detail})
	}
}

// WithTriggerAfterSettle raises events once HTMX has settled the swap.
func WithTriggerAfterSettle(events ...string) RenderOption {
	return func(c *Config) {
		for _, name := range events {
			c.afterSettle = append(c.afterSettle, event{name: name})
		}
	}
}

// WithRefresh sets the HX-Refresh header to force a full page refresh.
func WithRefresh() RenderOption {
	return func(c *Config) {
		c.Refresh = true
	}
}
