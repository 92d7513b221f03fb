package sql

import (
	"time"

	"github.com/spf13/cast"
)

// Type represents a SQL type.
type Type interface {
	// Name returns the name of the type.
	Name() string
	// Convert a value of a compatible type to the most accurate type of this
	// Type. It fails if the value cannot be converted losslessly.
	Convert(v interface{}) (interface{}, error)
	// Compare returns an integer comparing two values. The result will be 0
	// if a == b, -1 if a < b, and +1 if a > b. Nulls sort first.
	Compare(a, b interface{}) (int, error)
}

// TimestampLayout is the layout of the MySQL timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	// Null represents the null type.
	Null nullT
	// Boolean is a boolean type.
	Boolean booleanT
	// Int64 is an integer of 64 bits.
	Int64 numberT
	// Float64 is a floating point number of 64 bits.
	Float64 floatT
	// Text is a string type.
	Text textT
	// Timestamp is a UTC date and time type.
	Timestamp timestampT
)

// IsNumber checks if the given type is a number type.
func IsNumber(t Type) bool {
	switch t.(type) {
	case numberT, floatT:
		return true
	default:
		return false
	}
}

// IsInteger checks if the given type is an integer type.
func IsInteger(t Type) bool {
	_, ok := t.(numberT)
	return ok
}

// IsNull checks if the given expression is a null literal.
func IsNull(ex Expression) bool {
	return ex == nil || ex.Type() == Null
}

type nullT struct{}

// Name implements the Type interface.
func (t nullT) Name() string { return "null" }

// Convert implements the Type interface.
func (t nullT) Convert(v interface{}) (interface{}, error) {
	if v != nil {
		return nil, ErrInvalidType.New("null")
	}
	return nil, nil
}

// Compare implements the Type interface. Note that while this returns 0 (equals)
// for ordering purposes, in SQL NULL != NULL.
func (t nullT) Compare(a, b interface{}) (int, error) {
	return 0, nil
}

type numberT struct{}

// Name implements the Type interface.
func (t numberT) Name() string { return "bigint" }

// Convert implements the Type interface.
func (t numberT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToInt64E(v)
}

// Compare implements the Type interface.
func (t numberT) Compare(a, b interface{}) (int, error) {
	if hasNulls, res := compareNulls(a, b); hasNulls {
		return res, nil
	}

	ca, err := cast.ToInt64E(a)
	if err != nil {
		return 0, err
	}

	cb, err := cast.ToInt64E(b)
	if err != nil {
		return 0, err
	}

	if ca == cb {
		return 0, nil
	}
	if ca < cb {
		return -1, nil
	}
	return 1, nil
}

type floatT struct{}

// Name implements the Type interface.
func (t floatT) Name() string { return "double" }

// Convert implements the Type interface.
func (t floatT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToFloat64E(v)
}

// Compare implements the Type interface.
func (t floatT) Compare(a, b interface{}) (int, error) {
	if hasNulls, res := compareNulls(a, b); hasNulls {
		return res, nil
	}

	ca, err := cast.ToFloat64E(a)
	if err != nil {
		return 0, err
	}

	cb, err := cast.ToFloat64E(b)
	if err != nil {
		return 0, err
	}

	if ca == cb {
		return 0, nil
	}
	if ca < cb {
		return -1, nil
	}
	return 1, nil
}

type booleanT struct{}

// Name implements the Type interface.
func (t booleanT) Name() string { return "boolean" }

// Convert implements the Type interface.
func (t booleanT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToBoolE(v)
}

// Compare implements the Type interface. False sorts before true.
func (t booleanT) Compare(a, b interface{}) (int, error) {
	if hasNulls, res := compareNulls(a, b); hasNulls {
		return res, nil
	}

	ca, err := cast.ToBoolE(a)
	if err != nil {
		return 0, err
	}

	cb, err := cast.ToBoolE(b)
	if err != nil {
		return 0, err
	}

	if ca == cb {
		return 0, nil
	}
	if !ca {
		return -1, nil
	}
	return 1, nil
}

type textT struct{}

// Name implements the Type interface.
func (t textT) Name() string { return "text" }

// Convert implements the Type interface.
func (t textT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToStringE(v)
}

// Compare implements the Type interface.
func (t textT) Compare(a, b interface{}) (int, error) {
	if hasNulls, res := compareNulls(a, b); hasNulls {
		return res, nil
	}

	ca, err := cast.ToStringE(a)
	if err != nil {
		return 0, err
	}

	cb, err := cast.ToStringE(b)
	if err != nil {
		return 0, err
	}

	if ca == cb {
		return 0, nil
	}
	if ca < cb {
		return -1, nil
	}
	return 1, nil
}

type timestampT struct{}

// Name implements the Type interface.
func (t timestampT) Name() string { return "timestamp" }

// Convert implements the Type interface.
func (t timestampT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch value := v.(type) {
	case time.Time:
		return value.UTC(), nil
	case string:
		parsed, err := time.Parse(TimestampLayout, value)
		if err != nil {
			return nil, ErrInvalidType.New("timestamp")
		}
		return parsed.UTC(), nil
	default:
		ts, err := cast.ToTimeE(v)
		if err != nil {
			return nil, ErrInvalidType.New("timestamp")
		}
		return ts.UTC(), nil
	}
}

// Compare implements the Type interface.
func (t timestampT) Compare(a, b interface{}) (int, error) {
	if hasNulls, res := compareNulls(a, b); hasNulls {
		return res, nil
	}

	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}

	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}

	ta := av.(time.Time)
	tb := bv.(time.Time)
	if ta.Equal(tb) {
		return 0, nil
	}
	if ta.Before(tb) {
		return -1, nil
	}
	return 1, nil
}

// compareNulls reports whether one of the two values is nil and, if so, the
// comparison result placing nulls first.
func compareNulls(a, b interface{}) (bool, int) {
	if a == nil && b == nil {
		return true, 0
	}
	if a == nil {
		return true, -1
	}
	if b == nil {
		return true, 1
	}
	return false, 0
}
