package disabled

type T struct{ a int }

//rulecheck:constructor
func NewT(b int) T { return T{a: b} }

func v(xs ...int) {}

//rulecheck:sensitive
func Hot() { v(1) }
