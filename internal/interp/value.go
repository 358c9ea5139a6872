package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orizon-lang/rangeloop/internal/intrinsics"
	"github.com/orizon-lang/rangeloop/internal/runtime/progression"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTUnit        ValueTag = iota // no payload
	VTNull                        // no payload
	VTBool                        // bool
	VTInt                         // int64 holding an int32
	VTLong                        // int64
	VTChar                        // int64 holding a uint16
	VTList                        // []Value
	VTProgression                 // progression.Progression
	VTIterator                    // *progression.Iterator
)

// Value is a runtime value. Numeric payloads are stored as int64, already narrowed
// to the width of their tag.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Unit is the value of statements.
var Unit = Value{Tag: VTUnit}

// Null is the null reference.
var Null = Value{Tag: VTNull}

func Bool(b bool) Value      { return Value{Tag: VTBool, Data: b} }
func Int(n int32) Value      { return Value{Tag: VTInt, Data: int64(n)} }
func Long(n int64) Value     { return Value{Tag: VTLong, Data: n} }
func Char(c uint16) Value    { return Value{Tag: VTChar, Data: int64(c)} }
func List(vs ...Value) Value { return Value{Tag: VTList, Data: vs} }

// Number wraps n as an element of elem, truncating it to the element width.
func Number(elem intrinsics.ElementType, n int64) Value {
	n = progression.Narrow(elem, n)
	switch elem {
	case intrinsics.ElementLong:
		return Value{Tag: VTLong, Data: n}
	case intrinsics.ElementChar:
		return Value{Tag: VTChar, Data: n}
	default:
		return Value{Tag: VTInt, Data: n}
	}
}

// IsNumber reports whether v is an Int, Long or Char.
func (v Value) IsNumber() bool {
	return v.Tag == VTInt || v.Tag == VTLong || v.Tag == VTChar
}

// Num returns the numeric payload of v. It panics when v is not a number.
func (v Value) Num() int64 { return v.Data.(int64) }

func (v Value) Truth() bool { return v.Tag == VTBool && v.Data.(bool) }

func (v Value) String() string {
	switch v.Tag {
	case VTUnit:
		return "Unit"
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTInt:
		return strconv.FormatInt(v.Num(), 10)
	case VTLong:
		return strconv.FormatInt(v.Num(), 10) + "L"
	case VTChar:
		return strconv.QuoteRune(rune(v.Num()))
	case VTList:
		items := v.Data.([]Value)
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTProgression:
		p := v.Data.(progression.Progression)
		return fmt.Sprintf("%d..%d step %d", p.First, p.Last, p.Step)
	case VTIterator:
		return "<iterator>"
	default:
		return "<unknown>"
	}
}
