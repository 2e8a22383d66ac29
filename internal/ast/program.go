package ast

// NoIndex marks a missing jump target.
const NoIndex = -1

// Program is a validated statement list.
//
// End[i] is the index of the 'end' closing the opener at i. Next[i] is, for
// an if/elif/else clause, the index of the following clause or the closing
// 'end'. Both are NoIndex where they do not apply.
type Program struct {
	Stmts []Stmt
	End   []int
	Next  []int
}

// Len returns the number of statements.
func (p *Program) Len() int { return len(p.Stmts) }

// BodyRange returns the statement range [start, end) inside the block that
// opens at i.
func (p *Program) BodyRange(i int) (start, end int) {
	return i + 1, p.End[i]
}

// ClauseBody returns the statement range of the if/elif/else clause at i.
func (p *Program) ClauseBody(i int) (start, end int) {
	return i + 1, p.Next[i]
}
