package expression

import "github.com/efeller/logiplan/sql"

// RowNumber is the ROW_NUMBER() window function: rank-like, no arguments.
type RowNumber struct {
	order []SortOrder
}

func NewRowNumber() *RowNumber { return &RowNumber{} }

func (r *RowNumber) Resolved() bool             { return true }
func (r *RowNumber) DataType() sql.Type         { return sql.BigIntType }
func (r *RowNumber) Nullable() bool             { return false }
func (r *RowNumber) Children() []sql.Expression { return nil }
func (r *RowNumber) Foldable() bool             { return false }
func (r *RowNumber) Deterministic() bool        { return false }
func (r *RowNumber) References() sql.AttributeSet { return sql.AttributeSet{} }
func (r *RowNumber) String() string             { return "row_number()" }

func (r *RowNumber) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}

func (r *RowNumber) RequiresOrder() bool { return true }

func (r *RowNumber) WithOrder(order []SortOrder) sql.Expression {
	return &RowNumber{order: order}
}

// Rank is the RANK() window function: rank-like, no arguments.
type Rank struct {
	order []SortOrder
}

func NewRank() *Rank { return &Rank{} }

func (r *Rank) Resolved() bool               { return true }
func (r *Rank) DataType() sql.Type           { return sql.BigIntType }
func (r *Rank) Nullable() bool               { return false }
func (r *Rank) Children() []sql.Expression   { return nil }
func (r *Rank) Foldable() bool               { return false }
func (r *Rank) Deterministic() bool          { return false }
func (r *Rank) References() sql.AttributeSet { return sql.AttributeSet{} }
func (r *Rank) String() string               { return "rank()" }

func (r *Rank) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}

func (r *Rank) RequiresOrder() bool { return true }

func (r *Rank) WithOrder(order []SortOrder) sql.Expression {
	return &Rank{order: order}
}

// Lag is the LAG(col, offset) window function: mandates a single-row
// offset ROWS frame regardless of what the query specified.
type Lag struct {
	Arg    sql.Expression
	Offset int
}

func NewLag(arg sql.Expression, offset int) *Lag { return &Lag{Arg: arg, Offset: offset} }

func (l *Lag) Resolved() bool             { return l.Arg.Resolved() }
func (l *Lag) DataType() sql.Type         { return l.Arg.DataType() }
func (l *Lag) Nullable() bool             { return true }
func (l *Lag) Children() []sql.Expression { return []sql.Expression{l.Arg} }
func (l *Lag) Foldable() bool             { return false }
func (l *Lag) Deterministic() bool        { return false }
func (l *Lag) References() sql.AttributeSet { return l.Arg.References() }
func (l *Lag) String() string             { return "lag(...)" }

func (l *Lag) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return &Lag{Arg: children[0], Offset: l.Offset}, nil
}

func (l *Lag) MandatedFrame() *WindowFrame {
	return &WindowFrame{
		Type:  RowsFrame,
		Lower: FrameBoundary{Offset: -l.Offset},
		Upper: FrameBoundary{Offset: -l.Offset},
	}
}
