package ctorparams

type Point struct {
	X, Y  int
	label string
}

//rulecheck:constructor
func NewPoint(x, y int, label string) Point { // want `CA1071: For proper deserialization, make the 'label' field in the 'Point' type public to match the 'label' parameter`
	return Point{X: x, Y: y, label: label}
}

//rulecheck:constructor
func NewRenamed(first int, second int) *Point { // want `change the 'first' parameter name to match the 'X' field in the 'Point' type` `change the 'second' parameter name to match the 'Y' field in the 'Point' type`
	p := &Point{}
	p.X, p.Y = first, second
	return p
}

func NewPlain(a, b int) Point {
	return Point{X: a, Y: b}
}

type Counter struct {
	_count int
}

//rulecheck:constructor
func NewCounter(count int) Counter { // want `change the 'count' parameter name to match the '_count' field in the 'Counter' type`
	return Counter{}
}

type Empty struct{}

//rulecheck:constructor
func NewEmpty(v int) Empty { // want `change the 'v' parameter name to match the '' field in the 'Empty' type`
	_ = v
	return Empty{}
}

//rulecheck:constructor
func NewQuiet(q int) Point { //rulecheck:ignore-line CA1071
	return Point{X: q}
}
