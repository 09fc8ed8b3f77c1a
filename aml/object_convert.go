package aml

import "fmt"

// coerceOperand implements the spec §4.4 OPERAND conversion: String and
// Buffer both convert to Integer (a Buffer's bytes are read little-endian,
// a String is parsed as hex or decimal depending on leading "0x"). Integer
// passes through. Any other Kind is a type error.
func (ev *Evaluator) coerceOperand(o *Object) (*Object, error) {
	switch o.Kind {
	case KindInteger:
		return o, nil
	case KindBuffer:
		v := bufferToInteger(o.buf.data, ev.integerMask())
		o.Release(ev.host)
		return NewInteger(v), nil
	case KindString:
		v, err := stringToInteger(o.str.text)
		o.Release(ev.host)
		if err != nil {
			return nil, err
		}
		return NewInteger(ev.truncate(v)), nil
	default:
		o.Release(ev.host)
		return nil, errTypeMismatch
	}
}

func bufferToInteger(data []byte, mask uint64) uint64 {
	var v uint64
	n := len(data)
	if n > 8 {
		n = 8
	}
	for i := 0; i < n; i++ {
		v |= uint64(data[i]) << (8 * uint(i))
	}
	return v & mask
}

func stringToInteger(text []byte) (uint64, error) {
	var v uint64
	i := 0
	base := uint64(10)
	if len(text) >= 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		base = 16
		i = 2
	}
	if i == len(text) {
		return 0, nil
	}
	for ; i < len(text); i++ {
		c := text[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case base == 16 && c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case base == 16 && c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return v, nil
		}
		if d >= base {
			return v, nil
		}
		v = v*base + d
	}
	return v, nil
}

// asInteger returns an operand's integer value without consuming a
// reference; it does not coerce String/Buffer (use coerceOperand for that).
func asInteger(o *Object) (uint64, error) {
	if o.Kind != KindInteger {
		return 0, errTypeMismatch
	}
	return o.i, nil
}

// toBuffer implements ToBuffer / the implicit Buffer conversion used by
// CreateField targets and Concatenate (spec §4.4).
func (ev *Evaluator) toBuffer(o *Object) (*Object, error) {
	switch o.Kind {
	case KindBuffer:
		return o.Retain(), nil
	case KindInteger:
		width := 8
		if ev.revision == 1 {
			width = 4
		}
		data := make([]byte, width)
		for i := 0; i < width; i++ {
			data[i] = byte(o.i >> (8 * uint(i)))
		}
		buf, err := NewBuffer(uint64(width), data)
		return buf, err
	case KindString:
		buf, err := NewBuffer(uint64(len(o.str.text)), o.str.text)
		return buf, err
	default:
		return nil, errTypeMismatch
	}
}

// toIntegerObj implements ToInteger's explicit conversion (spec §4.4):
// unlike coerceOperand it is callable directly from a handler and returns a
// fresh Object rather than consuming the caller's reference.
func (ev *Evaluator) toIntegerObj(o *Object) (*Object, error) {
	switch o.Kind {
	case KindInteger:
		return NewInteger(o.i), nil
	case KindBuffer:
		return NewInteger(bufferToInteger(o.buf.data, ev.integerMask())), nil
	case KindString:
		v, err := stringToInteger(o.str.text)
		if err != nil {
			return nil, err
		}
		return NewInteger(ev.truncate(v)), nil
	default:
		return nil, errTypeMismatch
	}
}

// toHexString renders an Integer as "0x%X" and a Buffer as comma-separated
// "0x%02X" bytes; it backs ToHexString and the implicit Integer->String
// conversion.
func (ev *Evaluator) toHexString(o *Object) (*Object, error) {
	switch o.Kind {
	case KindInteger:
		return NewString([]byte(fmt.Sprintf("0x%X", o.i))), nil
	case KindBuffer:
		s := ""
		for i, b := range o.buf.data {
			if i > 0 {
				s += ","
			}
			s += fmt.Sprintf("0x%02X", b)
		}
		return NewString([]byte(s)), nil
	default:
		return nil, errTypeMismatch
	}
}

func (ev *Evaluator) toDecimalString(o *Object) (*Object, error) {
	switch o.Kind {
	case KindInteger:
		return NewString([]byte(fmt.Sprintf("%d", o.i))), nil
	case KindBuffer:
		s := ""
		for i, b := range o.buf.data {
			if i > 0 {
				s += ","
			}
			s += fmt.Sprintf("%d", b)
		}
		return NewString([]byte(s)), nil
	default:
		return nil, errTypeMismatch
	}
}

// toStringImplicit implements the implicit Integer/Buffer -> String
// conversion used when Store implicit-casts into a String-typed target
// (spec §4.3): Integer renders as hex, Buffer as ASCII up to its first NUL.
func (ev *Evaluator) toStringImplicit(o *Object) (*Object, error) {
	switch o.Kind {
	case KindString:
		return NewString(append([]byte(nil), o.str.text...)), nil
	case KindInteger:
		return ev.toHexString(o)
	case KindBuffer:
		return toStringFromBuffer(o.buf.data), nil
	default:
		return nil, errTypeMismatch
	}
}

// toStringFromBuffer renders a Buffer as a NUL-terminated ASCII String,
// used by the implicit Buffer->String conversion path (spec §4.4).
func toStringFromBuffer(data []byte) *Object {
	end := len(data)
	for i, b := range data {
		if b == 0 {
			end = i
			break
		}
	}
	return NewString(data[:end])
}

// objectTypeCode maps a Kind to the ObjectType opcode's integer encoding.
func objectTypeCode(k Kind) uint64 {
	switch k {
	case KindUninitialized:
		return 0
	case KindInteger:
		return 1
	case KindString:
		return 2
	case KindBuffer:
		return 3
	case KindPackage:
		return 4
	case KindBufferField:
		return 14
	case KindDevice:
		return 6
	case KindMethod:
		return 8
	case KindMutex:
		return 9
	case KindOperationRegion:
		return 10
	case KindPowerResource:
		return 11
	case KindProcessor:
		return 12
	case KindThermalZone:
		return 13
	case KindBufferIndex:
		return 14 // reported as BufferField, see Kind.String's open-question note
	case KindReference:
		return 20 // ACPI_TYPE_LOCAL_REFERENCE
	case KindDebug:
		return 16
	default:
		return 0
	}
}
