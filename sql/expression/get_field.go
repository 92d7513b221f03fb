package expression

import (
	"fmt"

	"gopkg.in/src-d/go-distsql.v0/sql"
)

// GetField is an expression to get the value of a field of a row by its
// position.
type GetField struct {
	table      string
	name       string
	fieldIndex int
	fieldType  sql.Type
	nullable   bool
}

// NewGetField creates a GetField expression.
func NewGetField(index int, fieldType sql.Type, fieldName string, nullable bool) *GetField {
	return NewGetFieldWithTable(index, fieldType, "", fieldName, nullable)
}

// NewGetFieldWithTable creates a GetField expression with table name.
func NewGetFieldWithTable(index int, fieldType sql.Type, table, fieldName string, nullable bool) *GetField {
	return &GetField{
		table:      table,
		name:       fieldName,
		fieldIndex: index,
		fieldType:  fieldType,
		nullable:   nullable,
	}
}

// NewGetFieldFromScope creates a GetField expression referencing the given
// scope field at its index.
func NewGetFieldFromScope(f *sql.Field) *GetField {
	return NewGetFieldWithTable(f.Index, f.Type, f.Table, f.Name, true)
}

// Table returns the name of the field table.
func (p *GetField) Table() string { return p.table }

// Name implements the Nameable interface.
func (p *GetField) Name() string { return p.name }

// Index returns the row index accessed by this field.
func (p *GetField) Index() int { return p.fieldIndex }

// Resolved implements the Expression interface.
func (p *GetField) Resolved() bool {
	return true
}

// IsNullable implements the Expression interface.
func (p *GetField) IsNullable() bool {
	return p.nullable
}

// Type implements the Expression interface.
func (p *GetField) Type() sql.Type {
	return p.fieldType
}

// Eval implements the Expression interface.
func (p *GetField) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if p.fieldIndex < 0 || p.fieldIndex >= len(row) {
		return nil, sql.ErrUnexpectedRowLength.New(p.fieldIndex+1, len(row))
	}
	return row[p.fieldIndex], nil
}

func (p *GetField) String() string {
	if p.table == "" {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.table, p.name)
}

// Children implements the Expression interface.
func (*GetField) Children() []sql.Expression {
	return nil
}

// WithChildren implements the Expression interface.
func (p *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

// WithIndex returns a copy of this expression with the given field index.
func (p *GetField) WithIndex(index int) *GetField {
	np := *p
	np.fieldIndex = index
	return &np
}
