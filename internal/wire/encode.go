package wire

import (
	"strconv"
	"strings"
)

// Encode renders the value tree as wire bytes. Output is stable with respect
// to object key insertion order; numeric formatting follows strconv defaults.
func Encode(v Value) string {
	var b strings.Builder
	encode(&b, v)
	return b.String()
}

func encode(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.boolVal {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.intVal, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.floatVal, 'g', -1, 64))
	case KindString:
		encodeString(b, v.stringVal)
	case KindArray:
		b.WriteByte('[')
		for i, elem := range v.arrayVal {
			if i > 0 {
				b.WriteByte(',')
			}
			encode(b, elem)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, key := range v.objKeys {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeString(b, key)
			b.WriteByte(':')
			encode(b, v.objVals[key])
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

// encodeString escapes backslash, double quote, newline, carriage return,
// and tab. No further Unicode escaping is applied.
func encodeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
