package sql

import (
	"io"
)

// TableRowIter iterates over the rows of all partitions of a table, one
// partition at a time, honoring context cancellation between rows.
type TableRowIter struct {
	ctx        *Context
	table      Table
	partitions PartitionIter
	partition  Partition
	rows       RowIter
}

// NewTableRowIter returns a new iterator over the rows in the partitions
// of the table given.
func NewTableRowIter(ctx *Context, table Table, partitions PartitionIter) *TableRowIter {
	return &TableRowIter{ctx: ctx, table: table, partitions: partitions}
}

func (i *TableRowIter) Next() (Row, error) {
	select {
	case <-i.ctx.Done():
		return nil, i.ctx.Err()
	default:
	}

	for {
		if i.partition == nil {
			partition, err := i.partitions.Next()
			if err != nil {
				if err == io.EOF {
					if e := i.partitions.Close(); e != nil {
						return nil, e
					}
				}
				return nil, err
			}

			i.partition = partition
		}

		if i.rows == nil {
			rows, err := i.table.PartitionRows(i.ctx, i.partition)
			if err != nil {
				return nil, err
			}

			i.rows = rows
		}

		row, err := i.rows.Next()
		if err == io.EOF {
			if err = i.rows.Close(); err != nil {
				return nil, err
			}

			i.partition = nil
			i.rows = nil
			continue
		}

		return row, err
	}
}

func (i *TableRowIter) Close() error {
	if i.rows != nil {
		if err := i.rows.Close(); err != nil {
			_ = i.partitions.Close()
			return err
		}
	}
	return i.partitions.Close()
}
