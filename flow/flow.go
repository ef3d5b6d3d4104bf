package flow

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Mode selects how AddToContext writes a value.
type Mode string

const (
	// ModeSimple overwrites whatever is stored at the key.
	ModeSimple Mode = "simple"
	// ModeArray appends to the slice stored at the key.
	ModeArray Mode = "array"
)

// Context is the conversation context store handed to nodes by the host.
// Keys may be dotted paths; intermediate maps are created on write.
type Context struct {
	mu   sync.RWMutex
	data map[string]any
}

// Input is what the host passes to every node invocation.
type Input struct {
	// RequestID correlates logs and upstream requests of one invocation.
	RequestID string
	Context   *Context
}

// NewInput returns an input whose context is seeded with initial.
func NewInput(initial map[string]any) *Input {
	data := make(map[string]any, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &Input{
		RequestID: uuid.NewString(),
		Context:   &Context{data: data},
	}
}

// AddToContext stores value at key using the given mode.
func (i *Input) AddToContext(key string, value any, mode Mode) error {
	switch mode {
	case ModeSimple, "":
		return i.Context.Set(key, value)
	case ModeArray:
		return i.Context.Append(key, value)
	default:
		return errors.Newf("unknown context mode %q", mode)
	}
}

// Get returns the value at key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parts := strings.Split(key, ".")
	var cur any = c.data
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set overwrites the value at key.
func (c *Context) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	parent, leaf, err := c.parentFor(key)
	if err != nil {
		return err
	}
	parent[leaf] = value
	return nil
}

// Append adds value to the slice at key. A scalar already stored there
// becomes the first element.
func (c *Context) Append(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	parent, leaf, err := c.parentFor(key)
	if err != nil {
		return err
	}
	switch existing := parent[leaf].(type) {
	case nil:
		parent[leaf] = []any{value}
	case []any:
		parent[leaf] = append(existing, value)
	default:
		parent[leaf] = []any{existing, value}
	}
	return nil
}

// Delete removes the value at key, if any.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	parts := strings.Split(key, ".")
	cur := c.data
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
}

// Full returns a shallow copy of the whole store.
func (c *Context) Full() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// parentFor walks key and returns the map that holds its last segment.
// Caller must hold the write lock.
func (c *Context) parentFor(key string) (map[string]any, string, error) {
	if key == "" {
		return nil, "", errors.New("empty context key")
	}
	parts := strings.Split(key, ".")
	cur := c.data
	for _, p := range parts[:len(parts)-1] {
		if p == "" {
			return nil, "", errors.Newf("invalid context key %q", key)
		}
		switch next := cur[p].(type) {
		case map[string]any:
			cur = next
		case nil:
			m := make(map[string]any)
			cur[p] = m
			cur = m
		default:
			return nil, "", errors.Newf("context key %q: %q is not an object", key, p)
		}
	}
	leaf := parts[len(parts)-1]
	if leaf == "" {
		return nil, "", errors.Newf("invalid context key %q", key)
	}
	return cur, leaf, nil
}
