package aggstate

import (
	"encoding/binary"
	"math"
	"time"

	"gopkg.in/src-d/go-distsql.v0/sql"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrCellTypeNotSupported is returned when a layout contains a type
	// that has no packed representation.
	ErrCellTypeNotSupported = errors.NewKind("cannot pack cells of type %s")

	// ErrLayoutMismatch is returned when the number of cells packed does
	// not match the layout.
	ErrLayoutMismatch = errors.NewKind("layout has %d cells, got %d")

	// ErrShortRecord is returned when a record ends before all its cells
	// and states could be read.
	ErrShortRecord = errors.NewKind("spill record of %d bytes truncated at offset %d")
)

// Layout describes the packed binary form of one spilled group: a list
// of typed scalar cells, the group key values and any plain selected
// values, followed by one fixed-width state per accumulator.
//
// Cells are packed in order, each as a validity byte followed by its
// payload when the value is not null. Fixed-width payloads are 8 bytes
// little-endian; text is length-prefixed with a 32-bit length. States
// start right after the last cell, so their offsets depend on the cell
// values of the record they belong to.
type Layout struct {
	Cells  []sql.Type
	States []int
}

const (
	cellNull  = 0x00
	cellValue = 0x01
)

// Pack packs the given cells into a new record with zeroed space
// reserved for every accumulator state. It returns the record and the
// offset inside it at which each state must be written.
func (l *Layout) Pack(cells sql.Row) ([]byte, []int, error) {
	if len(cells) != len(l.Cells) {
		return nil, nil, ErrLayoutMismatch.New(len(l.Cells), len(cells))
	}

	var record []byte
	for i, t := range l.Cells {
		var err error
		record, err = appendCell(record, t, cells[i])
		if err != nil {
			return nil, nil, err
		}
	}

	offsets := make([]int, len(l.States))
	pos := len(record)
	for i, size := range l.States {
		offsets[i] = pos
		pos += size
	}

	return append(record, make([]byte, pos-len(record))...), offsets, nil
}

// Unpack reads the cell values of a record and returns them along with
// the offset of each accumulator state inside it.
func (l *Layout) Unpack(record []byte) (sql.Row, []int, error) {
	cells := make(sql.Row, len(l.Cells))
	var pos int
	for i, t := range l.Cells {
		var err error
		cells[i], pos, err = readCell(record, pos, t)
		if err != nil {
			return nil, nil, err
		}
	}

	offsets := make([]int, len(l.States))
	for i, size := range l.States {
		offsets[i] = pos
		pos += size
	}

	if len(record) < pos {
		return nil, nil, ErrShortRecord.New(len(record), pos)
	}

	return cells, offsets, nil
}

func appendCell(record []byte, t sql.Type, v interface{}) ([]byte, error) {
	if v == nil {
		return append(record, cellNull), nil
	}

	v, err := t.Convert(v)
	if err != nil {
		return nil, err
	}

	record = append(record, cellValue)

	var payload [8]byte
	switch t {
	case sql.Int64:
		binary.LittleEndian.PutUint64(payload[:], uint64(v.(int64)))
		return append(record, payload[:]...), nil
	case sql.Float64:
		binary.LittleEndian.PutUint64(payload[:], math.Float64bits(v.(float64)))
		return append(record, payload[:]...), nil
	case sql.Timestamp:
		binary.LittleEndian.PutUint64(payload[:], uint64(v.(time.Time).UnixNano()))
		return append(record, payload[:]...), nil
	case sql.Boolean:
		var b byte
		if v.(bool) {
			b = 1
		}
		return append(record, b), nil
	case sql.Text:
		s := v.(string)
		binary.LittleEndian.PutUint32(payload[:4], uint32(len(s)))
		return append(append(record, payload[:4]...), s...), nil
	}

	return nil, ErrCellTypeNotSupported.New(t.Name())
}

func readCell(record []byte, pos int, t sql.Type) (interface{}, int, error) {
	if len(record) < pos+1 {
		return nil, 0, ErrShortRecord.New(len(record), pos)
	}

	validity := record[pos]
	pos++
	if validity == cellNull {
		return nil, pos, nil
	}

	switch t {
	case sql.Int64, sql.Float64, sql.Timestamp:
		if len(record) < pos+8 {
			return nil, 0, ErrShortRecord.New(len(record), pos)
		}

		bits := binary.LittleEndian.Uint64(record[pos : pos+8])
		pos += 8
		switch t {
		case sql.Int64:
			return int64(bits), pos, nil
		case sql.Float64:
			return math.Float64frombits(bits), pos, nil
		default:
			return time.Unix(0, int64(bits)).UTC(), pos, nil
		}
	case sql.Boolean:
		if len(record) < pos+1 {
			return nil, 0, ErrShortRecord.New(len(record), pos)
		}
		return record[pos] != 0, pos + 1, nil
	case sql.Text:
		if len(record) < pos+4 {
			return nil, 0, ErrShortRecord.New(len(record), pos)
		}

		n := int(binary.LittleEndian.Uint32(record[pos : pos+4]))
		pos += 4
		if len(record) < pos+n {
			return nil, 0, ErrShortRecord.New(len(record), pos)
		}
		return string(record[pos : pos+n]), pos + n, nil
	}

	return nil, 0, ErrCellTypeNotSupported.New(t.Name())
}
