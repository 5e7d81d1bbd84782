package selector

import "strings"

// Compile turns a dotted path such as "store.dispatch.main" into a member
// chain rooted at the first segment. With optional set every access after
// the root short-circuits (`main?.b?.c`).
func Compile(path string, optional bool) Expr {
	segments := strings.Split(path, ".")
	var e Expr = Ident(segments[0])
	for _, seg := range segments[1:] {
		e = &Member{Object: e, Property: seg, Optional: optional}
	}
	return e
}

// Synthesize builds the selector handed to useSelector:
//
//	({ main: main }) => ({ a: main?.a, c: main?.b?.c })
//
// Each path contributes one property keyed by its last segment, in input order.
func Synthesize(model string, paths []string) *Arrow {
	props := make([]Prop, 0, len(paths))
	for _, p := range paths {
		props = append(props, Prop{
			Key:   LastSegment(p),
			Value: Compile(model+"."+p, true),
		})
	}
	return &Arrow{
		Param: &Object{Props: []Prop{{Key: model, Value: Ident(model)}}},
		Body:  &Object{Props: props},
	}
}

// LastSegment returns the part of a dotted path after the final dot.
func LastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
