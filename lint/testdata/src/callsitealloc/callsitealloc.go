package callsitealloc

type Stringer interface{ String() string }

type Named struct {
	Stringer
	name string
}

func (n Named) Name() string { return n.name }

func join(sep string, parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

//rulecheck:sensitive "rendering loop"
func Hot(n Named, parts []string) string {
	s := join(",", "a", "b") // want `HAA0101: This call site is calling into a function with a 'params' parameter`
	s += join(",")
	s += join(",", parts...)
	s += n.String() // want `HAA0102: Non-overridden virtual method call on a value type`
	s += n.Name()
	p := &n
	s += p.String()
	var st Stringer = n
	s += st.String()
	func() {
		s += join("-", "c") // want `HAA0101`
	}()
	//rulecheck:ignore HAA0101
	s += join("-", "d")
	return s
}

func Cold() string {
	return join(",", "a", "b")
}
