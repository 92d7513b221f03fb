package mem

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

// Table represents an in-memory database table split in a fixed number of
// partitions. Rows are distributed among the partitions round-robin on
// insertion.
type Table struct {
	name       string
	schema     sql.Schema
	partitions map[string][]sql.Row
	keys       [][]byte
	insert     int
}

var _ sql.Table = (*Table)(nil)

// NewTable creates a new Table with the given name and schema and a
// single partition.
func NewTable(name string, schema sql.Schema) *Table {
	return NewPartitionedTable(name, schema, 1)
}

// NewPartitionedTable creates a new Table with the given name, schema and
// number of partitions.
func NewPartitionedTable(name string, schema sql.Schema, numPartitions int) *Table {
	if numPartitions < 1 {
		numPartitions = 1
	}

	var keys [][]byte
	var partitions = map[string][]sql.Row{}
	for i := 0; i < numPartitions; i++ {
		key := strconv.Itoa(i)
		keys = append(keys, []byte(key))
		partitions[key] = nil
	}

	return &Table{
		name:       name,
		schema:     schema,
		partitions: partitions,
		keys:       keys,
	}
}

// Name implements the sql.Table interface.
func (t *Table) Name() string {
	return t.name
}

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema {
	return t.schema
}

// Partitions implements the sql.Table interface.
func (t *Table) Partitions(ctx *sql.Context) (sql.PartitionIter, error) {
	return &partitionIter{keys: t.keys}, nil
}

// PartitionRows implements the sql.Table interface.
func (t *Table) PartitionRows(ctx *sql.Context, partition sql.Partition) (sql.RowIter, error) {
	rows, ok := t.partitions[string(partition.Key())]
	if !ok {
		return nil, fmt.Errorf("partition not found: %q", partition.Key())
	}

	return &tableIter{rows: rows}, nil
}

// Insert adds a new row to the table. It returns an error if the row does
// not conform to the schema of the table.
func (t *Table) Insert(ctx *sql.Context, row sql.Row) error {
	if err := t.schema.CheckRow(row); err != nil {
		return err
	}

	key := string(t.keys[t.insert])
	t.insert = (t.insert + 1) % len(t.keys)

	t.partitions[key] = append(t.partitions[key], row)
	return nil
}

func (t *Table) String() string {
	return t.name
}

type partition struct {
	key []byte
}

func (p *partition) Key() []byte { return p.key }

type partitionIter struct {
	keys [][]byte
	pos  int
}

func (i *partitionIter) Next() (sql.Partition, error) {
	if i.pos >= len(i.keys) {
		return nil, io.EOF
	}

	key := i.keys[i.pos]
	i.pos++
	return &partition{key}, nil
}

func (i *partitionIter) Close() error {
	i.pos = len(i.keys)
	return nil
}

type tableIter struct {
	rows []sql.Row
	pos  int
}

func (i *tableIter) Next() (sql.Row, error) {
	if i.pos >= len(i.rows) {
		return nil, io.EOF
	}

	row := i.rows[i.pos]
	i.pos++
	return row, nil
}

func (i *tableIter) Close() error {
	i.pos = len(i.rows)
	return nil
}
