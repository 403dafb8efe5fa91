package common

// Variables maps names to values. It carries both column bindings produced
// by the data source and constant bindings hoisted by the physical planner.
type Variables map[VariableName]Value

func EmptyVariables() Variables {
	return Variables{}
}

// Merge combines a and b into a new map. On key collision the value from b
// wins. Stream stages merge their compile-time constants with row bindings
// as Merge(constants, row), so row data shadows a constant of the same name.
func Merge(a, b Variables) Variables {
	ret := make(Variables, len(a)+len(b))
	for name, value := range a {
		ret[name] = value
	}
	for name, value := range b {
		ret[name] = value
	}
	return ret
}
