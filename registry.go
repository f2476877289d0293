package reagent

import (
	"fmt"

	"github.com/ejhollis/reagent/schema"
)

// Registry holds named tool definitions in insertion order.
//
// A Registry is populated at wiring time and read-only once handed to a
// Loop: tool handlers may have side effects, but nothing registers or
// unregisters tools during a run, so concurrent runs need no synchronization.
type Registry struct {
	order    []*ToolDefinition
	byName   map[string]*ToolDefinition
	compiled map[string]*schema.Compiled
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*ToolDefinition),
		compiled: make(map[string]*schema.Compiled),
	}
}

// Register adds a tool definition. The tool's parameter descriptor is
// compiled once here so arguments can be validated on every dispatch without
// recompiling.
//
// Fails with *DuplicateToolError if a tool with the same name is already
// registered, and with an error if the parameter descriptor does not compile.
func (r *Registry) Register(def *ToolDefinition) error {
	if def == nil {
		return fmt.Errorf("register: tool definition is nil")
	}
	if def.Name() == "" {
		return fmt.Errorf("register: tool name must not be empty")
	}
	if _, exists := r.byName[def.Name()]; exists {
		return &DuplicateToolError{Name: def.Name()}
	}

	compiled, err := def.Parameters().Compile()
	if err != nil {
		return fmt.Errorf("register %q: %w", def.Name(), err)
	}

	r.order = append(r.order, def)
	r.byName[def.Name()] = def
	if compiled != nil {
		r.compiled[def.Name()] = compiled
	}
	return nil
}

// MustRegister is like Register but panics on error. Use at wiring time.
func (r *Registry) MustRegister(def *ToolDefinition) *Registry {
	if err := r.Register(def); err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the tool with the given name, or *UnknownToolError.
func (r *Registry) Resolve(name string) (*ToolDefinition, error) {
	def, ok := r.byName[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return def, nil
}

// List returns all registered tools in insertion order. This order is what
// the model sees in its available-tool declarations.
func (r *Registry) List() []*ToolDefinition {
	out := make([]*ToolDefinition, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// validator returns the compiled parameter schema for a tool, or nil when
// the tool has no parameters.
func (r *Registry) validator(name string) *schema.Compiled {
	return r.compiled[name]
}
