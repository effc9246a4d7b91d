package program

import (
	"fmt"

	"github.com/SergeiSkv/rulecheck/models"
)

// Dispatch is how a call reaches its target
type Dispatch uint8

const (
	DispatchStatic  Dispatch = iota // no receiver
	DispatchDirect                  // receiver, non-virtual (sealed, non-overridable or base call)
	DispatchVirtual                 // receiver, virtual/abstract/interface dispatch
)

var dispatchNames = [...]string{"static", "direct", "virtual"}

func (d Dispatch) String() string {
	if int(d) < len(dispatchNames) {
		return dispatchNames[d]
	}
	return fmt.Sprintf("Dispatch(%d)", uint8(d))
}

func (d Dispatch) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Dispatch) UnmarshalText(text []byte) error {
	for i, name := range dispatchNames {
		if name == string(text) {
			*d = Dispatch(i)
			return nil
		}
	}
	return fmt.Errorf("unknown dispatch %q", text)
}

// Function is a member with a body
type Function struct {
	Name       string      `json:"name" yaml:"name"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Calls      []*CallSite `json:"calls,omitempty" yaml:"calls,omitempty"`
	Span       models.Span `json:"span" yaml:"span"`
}

// CallSite is an invocation in syntactic order within its function
type CallSite struct {
	Span models.Span `json:"span" yaml:"span"`
	// Resolved is false for ambiguous or erroneous invocations.
	Resolved bool       `json:"resolved" yaml:"resolved"`
	Callee   *Callee    `json:"callee,omitempty" yaml:"callee,omitempty"`
	Receiver *Receiver  `json:"receiver,omitempty" yaml:"receiver,omitempty"`
	Args     []Argument `json:"args,omitempty" yaml:"args,omitempty"`
}

// Callee is the resolved target of a call
type Callee struct {
	Name               string        `json:"name" yaml:"name"`
	DeclaringType      string        `json:"declaring_type,omitempty" yaml:"declaring_type,omitempty"`
	DeclaringValueType bool          `json:"declaring_value_type,omitempty" yaml:"declaring_value_type,omitempty"`
	Dispatch           Dispatch      `json:"dispatch" yaml:"dispatch"`
	Params             []FormalParam `json:"params,omitempty" yaml:"params,omitempty"`
}

// FormalParam is a parameter of a callee signature
type FormalParam struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Variadic bool   `json:"variadic,omitempty" yaml:"variadic,omitempty"`
}

// Receiver is the static type of the instance a method is called on
type Receiver struct {
	Type      string `json:"type" yaml:"type"`
	ValueType bool   `json:"value_type,omitempty" yaml:"value_type,omitempty"`
}

// Argument is one actual argument. Param names the formal it binds to when
// the call used a named argument; otherwise binding is positional. Spread is
// set when the argument is an explicitly built sequence whose type is the
// variadic collection type itself.
type Argument struct {
	Param  string      `json:"param,omitempty" yaml:"param,omitempty"`
	Spread bool        `json:"spread,omitempty" yaml:"spread,omitempty"`
	Span   models.Span `json:"span" yaml:"span"`
}

// VariadicIndex returns the index of the trailing variadic parameter or -1
func (c *Callee) VariadicIndex() int {
	if c == nil || len(c.Params) == 0 {
		return -1
	}
	last := len(c.Params) - 1
	if c.Params[last].Variadic {
		return last
	}
	return -1
}

// VariadicArgs returns the arguments bound to the variadic slot of the callee
func (cs *CallSite) VariadicArgs() []Argument {
	idx := cs.Callee.VariadicIndex()
	if idx < 0 {
		return nil
	}
	name := cs.Callee.Params[idx].Name
	var bound []Argument
	for i, arg := range cs.Args {
		switch {
		case arg.Param != "":
			if arg.Param == name {
				bound = append(bound, arg)
			}
		case i >= idx:
			bound = append(bound, arg)
		}
	}
	return bound
}
