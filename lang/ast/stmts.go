package ast

type (
	// Do is an ordered sequence of statements, run in order; the first error
	// or control signal stops the sequence.
	Do struct {
		Stmts []Stmt
	}

	// If runs Then when Cond is truthy, otherwise does nothing.
	If struct {
		Cond Expr
		Then Stmt
	}

	// IfElse runs Then when Cond is truthy, Else otherwise.
	IfElse struct {
		Cond Expr
		Then Stmt
		Else Stmt
	}

	// Repeat runs Body round(to_num(Times)) times (clamped to 0).
	Repeat struct {
		Times Expr
		Body  Stmt
	}

	// Forever runs Body in an unbounded loop.
	Forever struct {
		Body Stmt
	}

	// Until runs Body while Cond is falsy (pre-test).
	Until struct {
		Cond Expr
		Body Stmt
	}

	// While runs Body while Cond is truthy (pre-test).
	While struct {
		Cond Expr
		Body Stmt
	}

	// For assigns 1..ceil(to_num(Times)) into the variable named CounterID
	// and runs Body once per assignment.
	For struct {
		CounterID string
		Times     Expr
		Body      Stmt
	}

	// ProcCall invokes a custom procedure by its proccode, passing Args
	// keyed by the callee's argument ids.
	ProcCall struct {
		Proccode string
		Args     []KV
	}

	// DeleteAllOfList clears a list, creating it empty if absent.
	DeleteAllOfList struct {
		ListID string
	}

	// DeleteOfList removes the element at Index, a silent no-op if the
	// index doesn't resolve.
	DeleteOfList struct {
		ListID string
		Index  Expr
	}

	// AddToList appends Item to a list, creating it if absent.
	AddToList struct {
		ListID string
		Item   Expr
	}

	// ReplaceItemOfList overwrites the element at Index with Item, a silent
	// no-op if the index doesn't resolve.
	ReplaceItemOfList struct {
		ListID string
		Index  Expr
		Item   Expr
	}

	// SetVariable assigns Value to a project variable.
	SetVariable struct {
		VarID string
		Value Expr
	}

	// ChangeVariableBy adds to_num(Delta) to a project variable, treating a
	// missing or non-numeric previous value as 0.
	ChangeVariableBy struct {
		VarID string
		Delta Expr
	}

	// StopAll is the control signal that unwinds to the top of the run and
	// ends it successfully.
	StopAll struct{}

	// StopThisScript is the control signal that unwinds to the nearest
	// procedure boundary (or top-level hat) and is swallowed there.
	StopThisScript struct{}
)

func (*Do) stmt()                {}
func (*If) stmt()                {}
func (*IfElse) stmt()            {}
func (*Repeat) stmt()            {}
func (*Forever) stmt()           {}
func (*Until) stmt()             {}
func (*While) stmt()             {}
func (*For) stmt()               {}
func (*ProcCall) stmt()          {}
func (*DeleteAllOfList) stmt()   {}
func (*DeleteOfList) stmt()      {}
func (*AddToList) stmt()         {}
func (*ReplaceItemOfList) stmt() {}
func (*SetVariable) stmt()       {}
func (*ChangeVariableBy) stmt()  {}
func (*StopAll) stmt()           {}
func (*StopThisScript) stmt()    {}
