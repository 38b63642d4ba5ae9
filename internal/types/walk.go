package types

// Walk calls f on t and then on every type nested inside it, pre-order.
func Walk(t Type, f func(Type)) {
	if t == nil {
		return
	}
	f(t)
	switch t := t.(type) {
	case TFunc:
		for _, p := range t.Params {
			Walk(p, f)
		}
		Walk(t.Return, f)
	case TArray:
		Walk(t.Elem, f)
	case TGeneric:
		for _, a := range t.Args {
			Walk(a, f)
		}
	case TStruct:
		for _, fl := range t.Fields {
			Walk(fl.Type, f)
		}
	case TEnum:
		for _, v := range t.Variants {
			for _, p := range v.Payload {
				Walk(p, f)
			}
		}
	}
}

// ContainsVars reports whether any unification variable occurs in t.
func ContainsVars(t Type) bool {
	found := false
	Walk(t, func(t Type) {
		if _, ok := t.(TVar); ok {
			found = true
		}
	})
	return found
}

// FreeVars returns the distinct variable ids occurring in t, in first-seen
// order.
func FreeVars(t Type) []uint32 {
	var out []uint32
	seen := make(map[uint32]bool)
	Walk(t, func(t Type) {
		if v, ok := t.(TVar); ok && !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v.ID)
		}
	})
	return out
}

// ContainsUnknown reports whether the gradual Unknown type occurs in t.
func ContainsUnknown(t Type) bool {
	found := false
	Walk(t, func(t Type) {
		if _, ok := t.(TUnknown); ok {
			found = true
		}
	})
	return found
}
