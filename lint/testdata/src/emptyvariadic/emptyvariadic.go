package emptyvariadic

func record(args ...any) {}

//rulecheck:sensitive
func Hot() {
	record() // want `HAA0101`
	record(nil...)
}
