package aml

import "github.com/davecgh/go-spew/spew"

var debugDumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// storeDebug renders val to the host log via Store(val, Debug) — it has no
// effect on namespace or evaluator state (spec §4.4 Debug store).
func (ev *Evaluator) storeDebug(val *Object) {
	ev.logf(LevelInfo, "Debug: %s", debugDumper.Sdump(describeObject(val)))
}

// describeObject flattens an Object into a plain value spew can render
// readably, rather than dumping the refcounted struct (and its shared
// backing pointers) verbatim.
func describeObject(o *Object) interface{} {
	if o == nil {
		return "<nil>"
	}
	switch o.Kind {
	case KindInteger:
		return o.i
	case KindString:
		return string(o.str.text)
	case KindBuffer:
		return o.buf.data
	case KindPackage:
		elems := make([]interface{}, len(o.pkg.elems))
		for i, e := range o.pkg.elems {
			elems[i] = describeObject(e)
		}
		return elems
	case KindUninitialized:
		return "Uninitialized"
	default:
		return o.Kind.String()
	}
}
