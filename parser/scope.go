package parser

// binding is a single variable value tagged with the scope depth at which
// it was declared, used to decide whether a binding leaks upward when its
// frame is popped.
type binding struct {
	value string
	depth int
}

// scopeFrame is one frame on the WikiScript variable scope stack.
type scopeFrame struct {
	vars map[string]binding
}

func newScopeFrame() *scopeFrame {
	return &scopeFrame{vars: make(map[string]binding)}
}

func (f *scopeFrame) clone() *scopeFrame {
	c := newScopeFrame()
	for k, v := range f.vars {
		c.vars[k] = v
	}
	return c
}

// ScopeStack is a stack of (name -> (value, binding-depth)) frames.
// Entering "[[scope]]" pushes a frame; "[[/scope]]" pops it, propagating
// bindings recorded at a depth <= the new top frame's depth upward into
// that frame (spec.md §4.4's Variable scopes / §9's Variable scopes note).
type ScopeStack struct {
	frames []*scopeFrame
}

// NewScopeStack returns a stack with a single root frame at depth 0.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{frames: []*scopeFrame{newScopeFrame()}}
}

// Depth returns the current (0-based) scope depth.
func (s *ScopeStack) Depth() int {
	return len(s.frames) - 1
}

// Push enters a new scope ("[[scope]]").
func (s *ScopeStack) Push() {
	s.frames = append(s.frames, newScopeFrame())
}

// Pop exits the current scope ("[[/scope]]"), propagating eligible
// bindings upward. Popping the root frame is a no-op.
func (s *ScopeStack) Pop() {
	if len(s.frames) <= 1 {
		return
	}
	popped := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	newDepth := s.Depth()
	for name, b := range popped.vars {
		if b.depth <= newDepth {
			s.frames[newDepth].vars[name] = b
		}
	}
}

// Get resolves a variable by walking frames from innermost to outermost.
func (s *ScopeStack) Get(name string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].vars[name]; ok {
			return b.value, true
		}
	}
	return "", false
}

// Declare creates a binding at the current scope depth ("[[declare]]"),
// shadowing any outer binding of the same name.
func (s *ScopeStack) Declare(name, value string) {
	d := s.Depth()
	s.frames[d].vars[name] = binding{value: value, depth: d}
}

// Set updates an existing binding in place (preserving its original
// binding depth), or creates one at the current depth if none exists yet
// ("[[set]]").
func (s *ScopeStack) Set(name, value string) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].vars[name]; ok {
			s.frames[i].vars[name] = binding{value: value, depth: b.depth}
			return
		}
	}
	s.Declare(name, value)
}

// All flattens every visible binding (innermost shadowing outermost) into
// a plain map, for handing to EvaluateExpression as its variable
// environment.
func (s *ScopeStack) All() map[string]string {
	out := make(map[string]string)
	for _, f := range s.frames {
		for name, b := range f.vars {
			out[name] = b.value
		}
	}
	return out
}

// Clone deep-copies the stack; used when a transaction snapshots the
// Scopes slice.
func (s *ScopeStack) Clone() *ScopeStack {
	c := &ScopeStack{frames: make([]*scopeFrame, len(s.frames))}
	for i, f := range s.frames {
		c.frames[i] = f.clone()
	}
	return c
}
