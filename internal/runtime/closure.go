package runtime

import (
	"strings"

	"github.com/script-lang/script/internal/config"
)

// FunctionID is an interned handle into a runtime's function table. Closures
// carry the id rather than a pointer so they stay comparable and small.
type FunctionID uint32

// Capture is one captured binding. By-value captures own a strong reference;
// by-ref captures hold only a weak one and can expire when the referent's
// owner drops it first.
type Capture struct {
	Name   string
	ByRef  bool
	strong Rc
	weak   Weak
}

// ByValueCapture takes ownership of one strong reference to r.
func ByValueCapture(name string, r Rc) Capture {
	return Capture{Name: name, strong: r}
}

// ByRefCapture observes r without keeping it alive.
func ByRefCapture(name string, r Rc) Capture {
	return Capture{Name: name, ByRef: true, weak: r.Downgrade()}
}

// ClosureValue pairs a function id with its environment. Environments of up
// to InlineCaptureSlots entries live in a fixed array inside the value; only
// larger ones pay for a map. In practice almost every closure fits inline.
type ClosureValue struct {
	Fn    FunctionID
	Name  string
	Arity int

	inline   [config.InlineCaptureSlots]Capture
	inlineN  int
	overflow map[string]*Capture
}

// NewClosureValue builds a closure environment from its capture list.
func NewClosureValue(fn FunctionID, name string, arity int, captures []Capture) *ClosureValue {
	cl := &ClosureValue{Fn: fn, Name: name, Arity: arity}
	if len(captures) <= config.InlineCaptureSlots {
		cl.inlineN = copy(cl.inline[:], captures)
		return cl
	}
	cl.overflow = make(map[string]*Capture, len(captures))
	for i := range captures {
		c := captures[i]
		cl.overflow[c.Name] = &c
	}
	return cl
}

func (cl *ClosureValue) Kind() ValueKind { return ClosureKind }

func (cl *ClosureValue) Inspect() string {
	var b strings.Builder
	b.WriteString("<closure ")
	b.WriteString(cl.Name)
	if n := cl.CaptureCount(); n > 0 {
		b.WriteString(" [")
		first := true
		cl.eachCapture(func(c *Capture) {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(c.Name)
		})
		b.WriteString("]")
	}
	b.WriteString(">")
	return b.String()
}

func (cl *ClosureValue) CaptureCount() int {
	if cl.overflow != nil {
		return len(cl.overflow)
	}
	return cl.inlineN
}

// Inlined reports whether the environment fits in the fixed slots.
func (cl *ClosureValue) Inlined() bool { return cl.overflow == nil }

func (cl *ClosureValue) eachCapture(f func(*Capture)) {
	if cl.overflow != nil {
		for _, c := range cl.overflow {
			f(c)
		}
		return
	}
	for i := 0; i < cl.inlineN; i++ {
		f(&cl.inline[i])
	}
}

func (cl *ClosureValue) capture(name string) *Capture {
	if cl.overflow != nil {
		return cl.overflow[name]
	}
	for i := 0; i < cl.inlineN; i++ {
		if cl.inline[i].Name == name {
			return &cl.inline[i]
		}
	}
	return nil
}

// GetCaptured resolves a captured binding. By-ref captures upgrade their weak
// reference; the extra strong count taken by a successful upgrade belongs to
// the caller. A by-ref capture whose referent is gone fails with
// CaptureExpired rather than handing out a dangling reference.
func (cl *ClosureValue) GetCaptured(name string) (Rc, error) {
	c := cl.capture(name)
	if c == nil {
		return Rc{}, captureExpired(name)
	}
	if !c.ByRef {
		if !c.strong.Valid() {
			return Rc{}, captureExpired(name)
		}
		return c.strong, nil
	}
	r, ok := c.weak.Upgrade()
	if !ok {
		return Rc{}, captureExpired(name)
	}
	return r, nil
}

// Trace visits by-value captures only. By-ref captures are weak and form no
// ownership edge, so an expired one is invisible to the collector.
func (cl *ClosureValue) Trace(visit func(*Rc)) {
	if cl.overflow != nil {
		for _, c := range cl.overflow {
			if !c.ByRef {
				visit(&c.strong)
			}
		}
		return
	}
	for i := 0; i < cl.inlineN; i++ {
		if !cl.inline[i].ByRef {
			visit(&cl.inline[i].strong)
		}
	}
}

func (cl *ClosureValue) TraceSize() int {
	size := 64 + 16*config.InlineCaptureSlots
	if cl.overflow != nil {
		size += 48 * len(cl.overflow)
	}
	return size
}

// Drop releases the weak counts held by by-ref captures.
func (cl *ClosureValue) Drop() {
	cl.eachCapture(func(c *Capture) {
		if c.ByRef {
			c.weak.Release()
		}
	})
}
