package plan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash"
	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/aggstate"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
	"gopkg.in/src-d/go-distsql.v0/sql/expression/function/aggregation"
)

// ErrPartialBuffer is returned by a final aggregation when a row of its
// child does not carry the raw buffer a partial aggregation emits.
var ErrPartialBuffer = errors.NewKind("expected a partial buffer for '%s', got %T")

// AggregateMode tells a GroupBy which half of the aggregation work it
// performs.
type AggregateMode byte

const (
	// AggregateComplete accumulates input rows and produces final values
	// in a single node.
	AggregateComplete AggregateMode = iota
	// AggregatePartial accumulates input rows but emits the group key
	// values followed by the raw accumulation buffers, one cell per
	// selected expression, for a final stage to merge.
	AggregatePartial
	// AggregateFinal consumes the rows emitted by partial nodes of the
	// same shape, merges buffers belonging to the same group and produces
	// final values.
	AggregateFinal
)

func (m AggregateMode) String() string {
	switch m {
	case AggregateComplete:
		return "complete"
	case AggregatePartial:
		return "partial"
	case AggregateFinal:
		return "final"
	}
	return fmt.Sprintf("aggregatemode(%d)", byte(m))
}

// GroupBy groups the rows of its child by some expressions and evaluates
// one value per group for each selected expression.
type GroupBy struct {
	UnaryNode
	SelectedExprs []sql.Expression
	GroupByExprs  []sql.Expression

	// Mode selects complete, partial or final aggregation. A partial and
	// a final node with the same expressions form a distributed
	// aggregation, usually with an Exchange between them.
	Mode AggregateMode

	// MaxMemoryGroups bounds the number of groups held in memory when
	// every selected aggregation can serialize its buffer; past the bound
	// groups spill to disk under SpillDir. Zero keeps all groups in
	// memory.
	MaxMemoryGroups int
	// SpillDir is the directory spills are created under. Empty means the
	// system temporary directory.
	SpillDir string
}

// NewGroupBy creates a new GroupBy node. Selected expressions must be
// aggregations, grouping expressions or aliases of those; expressions
// combining the results of several aggregations belong in a Project on
// top of the GroupBy. A selected expression that is not an aggregation
// keeps the value of the last row seen for the group.
func NewGroupBy(selected, grouping []sql.Expression, child sql.Node) *GroupBy {
	return &GroupBy{
		UnaryNode:     UnaryNode{Child: child},
		SelectedExprs: selected,
		GroupByExprs:  grouping,
	}
}

// Resolved implements the Resolvable interface.
func (g *GroupBy) Resolved() bool {
	return g.UnaryNode.Resolved() &&
		expressionsResolved(g.SelectedExprs...) &&
		expressionsResolved(g.GroupByExprs...)
}

// Schema implements the Node interface. In partial mode the schema is the
// group key columns followed by one column per selected expression; those
// cells carry raw accumulation buffers until a final stage evaluates
// them, but they are declared with the type of the final value.
func (g *GroupBy) Schema() sql.Schema {
	if g.Mode == AggregatePartial {
		s := make(sql.Schema, 0, len(g.GroupByExprs)+len(g.SelectedExprs))
		for _, e := range g.GroupByExprs {
			s = append(s, schemaColumn(e))
		}
		for _, e := range g.SelectedExprs {
			s = append(s, schemaColumn(e))
		}
		return s
	}

	s := make(sql.Schema, len(g.SelectedExprs))
	for i, e := range g.SelectedExprs {
		s[i] = schemaColumn(e)
	}
	return s
}

// RowIter implements the Node interface.
func (g *GroupBy) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.GroupBy", opentracing.Tags{
		"groupings":  len(g.GroupByExprs),
		"aggregates": len(g.SelectedExprs),
		"mode":       g.Mode.String(),
	})

	if g.Mode > AggregateFinal {
		span.Finish()
		return nil, sql.ErrUnsupportedAggregateMode.New(byte(g.Mode))
	}

	i, err := g.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	var iter sql.RowIter
	if len(g.GroupByExprs) == 0 {
		iter = newGroupByIter(ctx, g, i)
	} else {
		iter = newGroupByGroupingIter(ctx, g, i)
	}

	return sql.NewSpanIter(span, iter), nil
}

func (g *GroupBy) String() string {
	pr := sql.NewTreePrinter()
	if g.Mode == AggregateComplete {
		_ = pr.WriteNode("GroupBy")
	} else {
		_ = pr.WriteNode("GroupBy(%s)", g.Mode)
	}

	var selected = make([]string, len(g.SelectedExprs))
	for i, e := range g.SelectedExprs {
		selected[i] = e.String()
	}

	var grouping = make([]string, len(g.GroupByExprs))
	for i, e := range g.GroupByExprs {
		grouping[i] = e.String()
	}

	_ = pr.WriteChildren(
		fmt.Sprintf("Aggregate(%s)", strings.Join(selected, ", ")),
		fmt.Sprintf("Grouping(%s)", strings.Join(grouping, ", ")),
		g.Child.String(),
	)
	return pr.String()
}

// Expressions implements the Expressioner interface.
func (g *GroupBy) Expressions() []sql.Expression {
	var exprs []sql.Expression
	exprs = append(exprs, g.SelectedExprs...)
	exprs = append(exprs, g.GroupByExprs...)
	return exprs
}

// WithChildren implements the Node interface.
func (g *GroupBy) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}

	ng := *g
	ng.Child = children[0]
	return &ng, nil
}

// WithExpressions implements the Expressioner interface.
func (g *GroupBy) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	expected := len(g.SelectedExprs) + len(g.GroupByExprs)
	if len(exprs) != expected {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(exprs), expected)
	}

	selected := make([]sql.Expression, len(g.SelectedExprs))
	copy(selected, exprs[:len(g.SelectedExprs)])

	grouping := make([]sql.Expression, len(g.GroupByExprs))
	copy(grouping, exprs[len(g.SelectedExprs):])

	ng := *g
	ng.SelectedExprs = selected
	ng.GroupByExprs = grouping
	return &ng, nil
}

// groupByIter aggregates all the rows of its child into a single group.
type groupByIter struct {
	ctx   *sql.Context
	g     *GroupBy
	child sql.RowIter
	buf   []sql.Row
	done  bool
}

func newGroupByIter(ctx *sql.Context, g *GroupBy, child sql.RowIter) *groupByIter {
	return &groupByIter{
		ctx:   ctx,
		g:     g,
		child: child,
		buf:   make([]sql.Row, len(g.SelectedExprs)),
	}
}

func (i *groupByIter) Next() (sql.Row, error) {
	if i.done {
		return nil, io.EOF
	}
	i.done = true

	for j, e := range i.g.SelectedExprs {
		i.buf[j] = newBuffer(e)
	}

	for {
		row, err := i.child.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		if err := absorbRow(i.ctx, i.g, i.buf, row); err != nil {
			return nil, err
		}
	}

	return emitGroup(i.ctx, i.g, nil, i.buf)
}

func (i *groupByIter) Close() error {
	i.buf = nil
	return i.child.Close()
}

// groupByGroupingIter aggregates the rows of its child into one group per
// distinct combination of grouping values. Groups are accumulated in
// memory and, when the node has a memory bound and every buffer can be
// serialized, spilled to disk past the bound.
type groupByGroupingIter struct {
	ctx   *sql.Context
	g     *GroupBy
	child sql.RowIter

	aggregations map[uint64][]sql.Row
	keyRows      map[uint64]sql.Row
	keys         []uint64
	pos          int
	computed     bool

	layout *aggstate.Layout
	spill  *groupSpill
}

func newGroupByGroupingIter(ctx *sql.Context, g *GroupBy, child sql.RowIter) *groupByGroupingIter {
	return &groupByGroupingIter{
		ctx:          ctx,
		g:            g,
		child:        child,
		aggregations: make(map[uint64][]sql.Row),
		keyRows:      make(map[uint64]sql.Row),
		layout:       spillLayout(g),
	}
}

func (i *groupByGroupingIter) Next() (sql.Row, error) {
	if !i.computed {
		if err := i.compute(); err != nil {
			return nil, err
		}
		i.computed = true
	}

	if i.spill != nil {
		return i.spill.next(i.ctx)
	}

	if i.pos >= len(i.keys) {
		return nil, io.EOF
	}

	key := i.keys[i.pos]
	i.pos++

	return emitGroup(i.ctx, i.g, i.keyRows[key], i.aggregations[key])
}

func (i *groupByGroupingIter) compute() error {
	for {
		row, err := i.child.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}

		key, keyRow, err := i.g.rowKey(i.ctx, row)
		if err != nil {
			return err
		}

		buffers, ok := i.aggregations[key]
		if !ok {
			buffers = make([]sql.Row, len(i.g.SelectedExprs))
			for j, e := range i.g.SelectedExprs {
				buffers[j] = newBuffer(e)
			}

			i.aggregations[key] = buffers
			i.keyRows[key] = keyRow
			i.keys = append(i.keys, key)
		}

		if err := absorbRow(i.ctx, i.g, buffers, row); err != nil {
			return err
		}

		if i.layout != nil && len(i.keys) > i.g.MaxMemoryGroups {
			if err := i.flush(); err != nil {
				return err
			}
		}
	}

	if i.spill != nil {
		// Move the in-memory remainder out so the drain has a single
		// source.
		return i.flush()
	}

	return nil
}

func (i *groupByGroupingIter) flush() error {
	if i.spill == nil {
		spill, err := newGroupSpill(i.g, i.layout)
		if err != nil {
			return err
		}
		i.spill = spill
	}

	for _, key := range i.keys {
		if err := i.spill.put(i.ctx, key, i.keyRows[key], i.aggregations[key]); err != nil {
			return err
		}
	}

	i.aggregations = make(map[uint64][]sql.Row)
	i.keyRows = make(map[uint64]sql.Row)
	i.keys = i.keys[:0]
	return nil
}

func (i *groupByGroupingIter) Close() error {
	i.aggregations = nil
	i.keyRows = nil
	i.keys = nil

	if i.spill != nil {
		if err := i.spill.close(); err != nil {
			_ = i.child.Close()
			return err
		}
		i.spill = nil
	}

	return i.child.Close()
}

// rowKey returns the group hash of a row together with the values of the
// group key. Final nodes take both from the leading cells their partial
// children emit, the other modes evaluate the grouping expressions.
func (g *GroupBy) rowKey(ctx *sql.Context, row sql.Row) (uint64, sql.Row, error) {
	if g.Mode == AggregateFinal {
		nkeys := len(g.GroupByExprs)
		if len(row) != nkeys+len(g.SelectedExprs) {
			return 0, nil, sql.ErrUnexpectedRowLength.New(nkeys+len(g.SelectedExprs), len(row))
		}

		keyRow := row[:nkeys]
		key, err := valuesKey(keyRow)
		return key, keyRow, err
	}

	vals := make(sql.Row, len(g.GroupByExprs))
	for i, expr := range g.GroupByExprs {
		v, err := expr.Eval(ctx, row)
		if err != nil {
			return 0, nil, err
		}
		vals[i] = v
	}

	key, err := valuesKey(vals)
	return key, vals, err
}

// valuesKey hashes a tuple of values into the group identity. Groups
// whose values collide under the hash are conflated.
func valuesKey(vals sql.Row) (uint64, error) {
	hash := xxhash.New()
	for _, v := range vals {
		if _, err := hash.Write([]byte(fmt.Sprintf("%#v,", v))); err != nil {
			return 0, err
		}
	}

	return hash.Sum64(), nil
}

// absorbRow folds one child row into the buffers of its group. Complete
// and partial nodes update the buffers with the raw row; final nodes
// merge the partial cells the row carries.
func absorbRow(ctx *sql.Context, g *GroupBy, buffers []sql.Row, row sql.Row) error {
	if g.Mode == AggregateFinal {
		partials := row[len(g.GroupByExprs):]
		if len(partials) != len(g.SelectedExprs) {
			return sql.ErrUnexpectedRowLength.New(
				len(g.GroupByExprs)+len(g.SelectedExprs), len(row),
			)
		}

		for j, e := range g.SelectedExprs {
			if err := mergeBuffer(ctx, buffers, j, e, partials[j]); err != nil {
				return err
			}
		}
		return nil
	}

	for j, e := range g.SelectedExprs {
		if err := updateBuffer(ctx, buffers, j, e, row); err != nil {
			return err
		}
	}
	return nil
}

// emitGroup produces the output row of a finished group.
func emitGroup(ctx *sql.Context, g *GroupBy, keyRow sql.Row, buffers []sql.Row) (sql.Row, error) {
	if g.Mode == AggregatePartial {
		return partialRow(keyRow, g.SelectedExprs, buffers), nil
	}

	row := make(sql.Row, len(buffers))
	for j, e := range g.SelectedExprs {
		v, err := evalBuffer(ctx, e, buffers[j])
		if err != nil {
			return nil, err
		}
		row[j] = v
	}

	return row, nil
}

// partialRow lays out the wire row of a partial group: the group key
// values followed by one cell per selected expression. Aggregations
// contribute their raw buffer, any other expression its current value.
func partialRow(keyRow sql.Row, exprs []sql.Expression, buffers []sql.Row) sql.Row {
	row := make(sql.Row, 0, len(keyRow)+len(buffers))
	row = append(row, keyRow...)
	for i, e := range exprs {
		if _, ok := underlyingAggregation(e); ok {
			row = append(row, buffers[i])
			continue
		}

		if len(buffers[i]) == 0 {
			row = append(row, nil)
			continue
		}
		row = append(row, buffers[i][0])
	}
	return row
}

// underlyingAggregation unwraps aliases down to the aggregation carried
// by the expression, if any.
func underlyingAggregation(e sql.Expression) (sql.Aggregation, bool) {
	switch e := e.(type) {
	case sql.Aggregation:
		return e, true
	case *expression.Alias:
		return underlyingAggregation(e.Child)
	}
	return nil, false
}

func newBuffer(e sql.Expression) sql.Row {
	if agg, ok := underlyingAggregation(e); ok {
		return agg.NewBuffer()
	}
	return nil
}

func updateBuffer(ctx *sql.Context, buffers []sql.Row, idx int, e sql.Expression, row sql.Row) error {
	if agg, ok := underlyingAggregation(e); ok {
		return agg.Update(ctx, buffers[idx], row)
	}

	val, err := e.Eval(ctx, row)
	if err != nil {
		return err
	}

	buffers[idx] = sql.NewRow(val)
	return nil
}

func mergeBuffer(ctx *sql.Context, buffers []sql.Row, idx int, e sql.Expression, partial interface{}) error {
	if agg, ok := underlyingAggregation(e); ok {
		pbuf, ok := partial.(sql.Row)
		if !ok {
			return ErrPartialBuffer.New(e, partial)
		}
		return agg.Merge(ctx, buffers[idx], pbuf)
	}

	buffers[idx] = sql.NewRow(partial)
	return nil
}

func evalBuffer(ctx *sql.Context, e sql.Expression, buffer sql.Row) (interface{}, error) {
	if agg, ok := underlyingAggregation(e); ok {
		return agg.Eval(ctx, buffer)
	}

	// Non aggregation expressions hold the value of the last row of the
	// group.
	if len(buffer) == 0 {
		return nil, nil
	}
	return buffer[0], nil
}

// spillLayout returns the record layout of a spill of this node, or nil
// when the node must not spill: either it has no memory bound, or some
// selected aggregation cannot serialize its buffer, or some cell type
// cannot be packed.
func spillLayout(g *GroupBy) *aggstate.Layout {
	if g.MaxMemoryGroups <= 0 {
		return nil
	}

	var cells []sql.Type
	for _, e := range g.GroupByExprs {
		if !packableCell(e.Type()) {
			return nil
		}
		cells = append(cells, e.Type())
	}

	var states []int
	for _, e := range g.SelectedExprs {
		agg, ok := underlyingAggregation(e)
		if !ok {
			if !packableCell(e.Type()) {
				return nil
			}
			cells = append(cells, e.Type())
			continue
		}

		s, ok := agg.(aggregation.SerializableAggregation)
		if !ok {
			return nil
		}
		states = append(states, s.StateSize())
	}

	return &aggstate.Layout{Cells: cells, States: states}
}

func packableCell(t sql.Type) bool {
	switch t {
	case sql.Null, sql.Boolean, sql.Int64, sql.Float64, sql.Text, sql.Timestamp:
		return true
	}
	return false
}

// groupSpill holds the on-disk side of a grouping iterator. Every flush
// packs all in-memory groups into records and moves them to the store;
// records of a group that was flushed before are merged.
type groupSpill struct {
	g       *GroupBy
	dir     string
	layout  *aggstate.Layout
	store   *aggstate.Store
	records *aggstate.RecordIter
}

func newGroupSpill(g *GroupBy, layout *aggstate.Layout) (*groupSpill, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	id := "groupby-" + uid.String()

	base := g.SpillDir
	if base == "" {
		base = os.TempDir()
	}

	store, err := aggstate.NewStore(base, id, layout)
	if err != nil {
		return nil, err
	}

	return &groupSpill{
		g:      g,
		dir:    filepath.Join(base, id),
		layout: layout,
		store:  store,
	}, nil
}

func (s *groupSpill) put(ctx *sql.Context, key uint64, keyRow sql.Row, buffers []sql.Row) error {
	record, err := s.pack(keyRow, buffers)
	if err != nil {
		return err
	}

	return s.store.Put(key, record, func(existing, incoming []byte) ([]byte, error) {
		return s.merge(ctx, existing, incoming)
	})
}

func (s *groupSpill) pack(keyRow sql.Row, buffers []sql.Row) ([]byte, error) {
	cells := make(sql.Row, 0, len(s.layout.Cells))
	cells = append(cells, keyRow...)
	for j, e := range s.g.SelectedExprs {
		if _, ok := underlyingAggregation(e); ok {
			continue
		}

		if len(buffers[j]) == 0 {
			cells = append(cells, nil)
		} else {
			cells = append(cells, buffers[j][0])
		}
	}

	record, offsets, err := s.layout.Pack(cells)
	if err != nil {
		return nil, err
	}

	var k int
	for j, e := range s.g.SelectedExprs {
		agg, ok := underlyingAggregation(e)
		if !ok {
			continue
		}

		sa := agg.(aggregation.SerializableAggregation)
		if err := sa.SerializeBuffer(buffers[j], record, offsets[k]); err != nil {
			return nil, err
		}
		k++
	}

	return record, nil
}

func (s *groupSpill) unpack(record []byte) (sql.Row, []sql.Row, error) {
	cells, offsets, err := s.layout.Unpack(record)
	if err != nil {
		return nil, nil, err
	}

	nkeys := len(s.g.GroupByExprs)
	keyRow := cells[:nkeys]

	buffers := make([]sql.Row, len(s.g.SelectedExprs))
	var k, v int
	for j, e := range s.g.SelectedExprs {
		agg, ok := underlyingAggregation(e)
		if !ok {
			buffers[j] = sql.NewRow(cells[nkeys+v])
			v++
			continue
		}

		sa := agg.(aggregation.SerializableAggregation)
		buf, err := sa.DeserializeBuffer(record, offsets[k])
		if err != nil {
			return nil, nil, err
		}
		buffers[j] = buf
		k++
	}

	return keyRow, buffers, nil
}

// merge combines two records of the same group. The incoming record is
// always the most recently accumulated one, so for expressions with last
// value semantics its cell wins.
func (s *groupSpill) merge(ctx *sql.Context, existing, incoming []byte) ([]byte, error) {
	keyRow, exBuffers, err := s.unpack(existing)
	if err != nil {
		return nil, err
	}

	_, inBuffers, err := s.unpack(incoming)
	if err != nil {
		return nil, err
	}

	for j, e := range s.g.SelectedExprs {
		agg, ok := underlyingAggregation(e)
		if !ok {
			exBuffers[j] = inBuffers[j]
			continue
		}

		if err := agg.Merge(ctx, exBuffers[j], inBuffers[j]); err != nil {
			return nil, err
		}
	}

	return s.pack(keyRow, exBuffers)
}

func (s *groupSpill) next(ctx *sql.Context) (sql.Row, error) {
	if s.records == nil {
		records, err := s.store.Records()
		if err != nil {
			return nil, err
		}
		s.records = records
	}

	_, record, err := s.records.Next()
	if err != nil {
		return nil, err
	}

	keyRow, buffers, err := s.unpack(record)
	if err != nil {
		return nil, err
	}

	return emitGroup(ctx, s.g, keyRow, buffers)
}

func (s *groupSpill) close() error {
	if s.records != nil {
		if err := s.records.Close(); err != nil {
			_ = s.store.Close()
			return err
		}
		s.records = nil
	}

	if err := s.store.Close(); err != nil {
		return err
	}

	return os.RemoveAll(s.dir)
}
