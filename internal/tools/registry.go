// ABOUTME: Immutable-after-startup registry mapping tool names to handlers.
// ABOUTME: Preserves registration order so the tool catalogue is deterministic.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admesh/ads-gateway/internal/session"
)

// ErrToolNotFound indicates the requested tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// Handler executes one tool call for a session. Arguments have already been
// validated against the tool's input schema.
type Handler interface {
	Execute(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	return f(ctx, sess, args)
}

// Descriptor is the catalogue entry advertised via tools/list.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor
	Handler Handler
}

// Registry is the startup-populated tool catalogue.
type Registry struct {
	order  []string
	tools  map[string]*Tool
	sealed bool
	logger *slog.Logger
}

// NewRegistry creates an empty, unsealed Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a tool. Names must be unique. Registering after Seal is a
// programming error and panics.
func (r *Registry) Register(tool *Tool) error {
	if r.sealed {
		panic("tools: Register called on sealed registry")
	}
	if tool.Name == "" {
		return errors.New("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// Seal marks registration as complete. The registry is read-only afterwards.
func (r *Registry) Seal() {
	r.sealed = true
	r.logger.Info("tool registry sealed", "tool_count", len(r.order))
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mustBeSealed("List")

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor)
	}
	return out
}

// Resolve returns the tool for name, or ErrToolNotFound.
func (r *Registry) Resolve(name string) (*Tool, error) {
	r.mustBeSealed("Resolve")

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool, nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) mustBeSealed(op string) {
	if !r.sealed {
		panic("tools: " + op + " called before registration completed")
	}
}
