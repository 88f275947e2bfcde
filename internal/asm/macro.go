package asm

import (
	"fmt"
	"strconv"
)

// The macro expander rewrites every MacroCall in a parsed Program into
// plain AST before lowering — a pure source-to-source transform (§4.3).
// Each macro is a Go function from argument expressions to a replacement
// expression; expansion output is re-walked so macros can expand to macros.
type expander struct {
	counter int
}

type macroFunc func(e *expander, mc *MacroCall) (Expr, error)

var macros = map[string]macroFunc{
	"test":        expandTest,
	"test_broken": expandTestBroken,
	"test_throws": expandTestThrows,
	"testset":     expandTestset,
	"elapsed":     expandElapsed,
	"time":        expandTime,
	"timed":       expandTimed,
	"coalesce":    expandCoalesce,
	"view":        expandView,
	"views":       expandPassthrough,
	"static":      expandPassthrough,
	"info":        expandInfo,
	"error":       expandErrorLog,
	"gensym":      expandGensym,
	"__LINE__":    expandLine,
	"__FILE__":    expandFile,
	"__MODULE__":  expandModule,
}

// ExpandProgram rewrites all macro calls in prog in place. Called by the
// compiler before any lowering so the opcode emitters never see a
// MacroCall node.
func ExpandProgram(prog *Program) error {
	e := &expander{}
	for _, fn := range prog.Funcs {
		if err := e.expandStmts(fn.Body); err != nil {
			return err
		}
	}
	if err := e.expandStmts(prog.Main); err != nil {
		return err
	}

	// @kwdef structs grow a keyword constructor built from the field
	// defaults: `P(y = 2.0)` dispatches to it, and its body runs the
	// ordinary positional construction.
	for _, sd := range prog.Structs {
		if !sd.KwDef {
			continue
		}
		fn := &FuncDecl{Name: sd.Name, Line: sd.Line}
		ctorArgs := make([]Expr, len(sd.Fields))
		for i, f := range sd.Fields {
			if f.Default == nil {
				return fmt.Errorf("asm: @kwdef struct %s field %q needs a default at line %d", sd.Name, f.Name, sd.Line)
			}
			fn.KwParams = append(fn.KwParams, KwParam{Name: f.Name, Default: f.Default})
			ctorArgs[i] = &Ident{Name: f.Name}
		}
		fn.Body = []Stmt{&ReturnStmt{Value: &CallExpr{Callee: sd.Name, Args: ctorArgs}, Line: sd.Line}}
		prog.Funcs = append(prog.Funcs, fn)
	}
	return nil
}

// gensym returns a local name no source identifier can collide with (the
// lexer never produces a `#`).
func (e *expander) gensym(hint string) string {
	e.counter++
	return "#" + hint + strconv.Itoa(e.counter)
}

func (e *expander) expandStmts(stmts []Stmt) error {
	for _, s := range stmts {
		if err := e.expandStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *expander) expandStmt(s Stmt) error {
	var err error
	switch st := s.(type) {
	case *LetStmt:
		st.Value, err = e.expandExpr(st.Value)
	case *LetBlockStmt:
		if st.Value, err = e.expandExpr(st.Value); err != nil {
			return err
		}
		err = e.expandStmts(st.Body)
	case *GlobalStmt:
		st.Value, err = e.expandExpr(st.Value)
	case *AssignStmt:
		st.Value, err = e.expandExpr(st.Value)
	case *ExprStmt:
		st.Value, err = e.expandExpr(st.Value)
	case *ReturnStmt:
		if st.Value != nil {
			st.Value, err = e.expandExpr(st.Value)
		}
	case *ThrowStmt:
		st.Value, err = e.expandExpr(st.Value)
	case *IfStmt:
		if st.Cond, err = e.expandExpr(st.Cond); err != nil {
			return err
		}
		if err = e.expandStmts(st.Then); err != nil {
			return err
		}
		err = e.expandStmts(st.Else)
	case *WhileStmt:
		if st.Cond, err = e.expandExpr(st.Cond); err != nil {
			return err
		}
		err = e.expandStmts(st.Body)
	case *ForStmt:
		if st.Iterable, err = e.expandExpr(st.Iterable); err != nil {
			return err
		}
		err = e.expandStmts(st.Body)
	case *TryStmt:
		if err = e.expandStmts(st.Body); err != nil {
			return err
		}
		if err = e.expandStmts(st.CatchBody); err != nil {
			return err
		}
		err = e.expandStmts(st.FinallyBody)
	case *SetFieldStmt:
		if st.Object, err = e.expandExpr(st.Object); err != nil {
			return err
		}
		st.Value, err = e.expandExpr(st.Value)
	case *SetIndexStmt:
		if st.Target, err = e.expandExpr(st.Target); err != nil {
			return err
		}
		if st.Index, err = e.expandExpr(st.Index); err != nil {
			return err
		}
		st.Value, err = e.expandExpr(st.Value)
	}
	return err
}

func (e *expander) expandExpr(x Expr) (Expr, error) {
	var err error
	switch ex := x.(type) {
	case *MacroCall:
		for i, a := range ex.Args {
			if ex.Args[i], err = e.expandExpr(a); err != nil {
				return nil, err
			}
		}
		fn, ok := macros[ex.Name]
		if !ok {
			return nil, fmt.Errorf("asm: unknown macro @%s at line %d", ex.Name, ex.Line)
		}
		out, err := fn(e, ex)
		if err != nil {
			return nil, err
		}
		// Expansion output is re-expanded at the expansion site.
		return e.expandExpr(out)
	case *UnaryExpr:
		ex.Operand, err = e.expandExpr(ex.Operand)
	case *BinaryExpr:
		if ex.Left, err = e.expandExpr(ex.Left); err != nil {
			return nil, err
		}
		ex.Right, err = e.expandExpr(ex.Right)
	case *CallExpr:
		for i, a := range ex.Args {
			if ex.Args[i], err = e.expandExpr(a); err != nil {
				return nil, err
			}
		}
		for i := range ex.Kw {
			if ex.Kw[i].Value, err = e.expandExpr(ex.Kw[i].Value); err != nil {
				return nil, err
			}
		}
		if ex.Do != nil {
			err = e.expandStmts(ex.Do.Body)
		}
	case *FieldExpr:
		ex.Target, err = e.expandExpr(ex.Target)
	case *ArrayLit:
		for i, elem := range ex.Elems {
			if ex.Elems[i], err = e.expandExpr(elem); err != nil {
				return nil, err
			}
		}
	case *IndexExpr:
		if ex.Target, err = e.expandExpr(ex.Target); err != nil {
			return nil, err
		}
		ex.Index, err = e.expandExpr(ex.Index)
	case *RangeExpr:
		if ex.Lo, err = e.expandExpr(ex.Lo); err != nil {
			return nil, err
		}
		ex.Hi, err = e.expandExpr(ex.Hi)
	case *GeneratorExpr:
		if ex.Body, err = e.expandExpr(ex.Body); err != nil {
			return nil, err
		}
		if ex.Iterable, err = e.expandExpr(ex.Iterable); err != nil {
			return nil, err
		}
		if ex.Cond != nil {
			ex.Cond, err = e.expandExpr(ex.Cond)
		}
	case *LambdaExpr:
		err = e.expandStmts(ex.Body)
	case *BlockExpr:
		if err = e.expandStmts(ex.Stmts); err != nil {
			return nil, err
		}
		if ex.Value != nil {
			ex.Value, err = e.expandExpr(ex.Value)
		}
	}
	if err != nil {
		return nil, err
	}
	return x, nil
}

func wantArgs(mc *MacroCall, n int) error {
	if len(mc.Args) != n {
		return fmt.Errorf("asm: @%s expects %d argument(s), got %d at line %d", mc.Name, n, len(mc.Args), mc.Line)
	}
	return nil
}

func throwAssertion(msg string, line int) Stmt {
	return &ThrowStmt{
		Value: &CallExpr{Callee: "AssertionError", Args: []Expr{&StringLit{Value: msg}}},
		Line:  line,
	}
}

// @test ex — raises AssertionError unless ex is true, yields true.
func expandTest(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 1); err != nil {
		return nil, err
	}
	return &BlockExpr{
		Stmts: []Stmt{&IfStmt{
			Cond: &UnaryExpr{Op: "!", Operand: mc.Args[0]},
			Then: []Stmt{throwAssertion("test failed", mc.Line)},
			Line: mc.Line,
		}},
		Value: &BoolLit{Value: true},
	}, nil
}

// @test_broken ex — inverts the expectation: passes while ex stays false.
func expandTestBroken(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 1); err != nil {
		return nil, err
	}
	return &BlockExpr{
		Stmts: []Stmt{&IfStmt{
			Cond: mc.Args[0],
			Then: []Stmt{throwAssertion("test unexpectedly passed", mc.Line)},
			Line: mc.Line,
		}},
		Value: &BoolLit{Value: true},
	}, nil
}

// @test_throws T ex — passes when evaluating ex throws an exception with
// `isa(e, T)`. The thrown type IS checked against T by subtype, not merely
// observed.
func expandTestThrows(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 2); err != nil {
		return nil, err
	}
	threw := e.gensym("threw")
	exc := e.gensym("exc")
	return &BlockExpr{
		Stmts: []Stmt{
			&LetStmt{Name: threw, Value: &BoolLit{Value: false}, Line: mc.Line},
			&TryStmt{
				Body:      []Stmt{&ExprStmt{Value: mc.Args[1], Line: mc.Line}},
				CatchName: exc,
				CatchBody: []Stmt{&AssignStmt{
					Name:  threw,
					Value: &CallExpr{Callee: "isa", Args: []Expr{&Ident{Name: exc}, mc.Args[0]}},
					Line:  mc.Line,
				}},
				Line: mc.Line,
			},
			&IfStmt{
				Cond: &UnaryExpr{Op: "!", Operand: &Ident{Name: threw}},
				Then: []Stmt{throwAssertion("expected exception was not thrown", mc.Line)},
				Line: mc.Line,
			},
		},
		Value: &BoolLit{Value: true},
	}, nil
}

// @testset "name" { body } — grouping only: runs the body, yields true.
func expandTestset(e *expander, mc *MacroCall) (Expr, error) {
	if len(mc.Args) == 0 {
		return nil, fmt.Errorf("asm: @testset needs a body at line %d", mc.Line)
	}
	block, ok := mc.Args[len(mc.Args)-1].(*BlockExpr)
	if !ok {
		return nil, fmt.Errorf("asm: @testset needs a { } body at line %d", mc.Line)
	}
	return &BlockExpr{Stmts: block.Stmts, Value: &BoolLit{Value: true}}, nil
}

func timeNs() Expr { return &CallExpr{Callee: "time_ns"} }

func elapsedSince(t0 string) Expr {
	return &BinaryExpr{
		Op:    "/",
		Left:  &CallExpr{Callee: "Float64", Args: []Expr{&BinaryExpr{Op: "-", Left: timeNs(), Right: &Ident{Name: t0}}}},
		Right: &FloatLit{Value: 1e9},
	}
}

// @elapsed ex — seconds as Float64, discarding ex's value (§5).
func expandElapsed(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 1); err != nil {
		return nil, err
	}
	t0 := e.gensym("t")
	return &BlockExpr{
		Stmts: []Stmt{
			&LetStmt{Name: t0, Value: timeNs(), Line: mc.Line},
			&ExprStmt{Value: mc.Args[0], Line: mc.Line},
		},
		Value: elapsedSince(t0),
	}, nil
}

// @time ex — prints the elapsed seconds, yields ex's value.
func expandTime(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 1); err != nil {
		return nil, err
	}
	t0, v, dt := e.gensym("t"), e.gensym("v"), e.gensym("dt")
	return &BlockExpr{
		Stmts: []Stmt{
			&LetStmt{Name: t0, Value: timeNs(), Line: mc.Line},
			&LetStmt{Name: v, Value: mc.Args[0], Line: mc.Line},
			&LetStmt{Name: dt, Value: elapsedSince(t0), Line: mc.Line},
			&ExprStmt{Value: &CallExpr{Callee: "println", Args: []Expr{
				&Ident{Name: dt}, &StringLit{Value: " seconds"},
			}}, Line: mc.Line},
		},
		Value: &Ident{Name: v},
	}, nil
}

// @timed ex — NamedTuple {value, time} (§5).
func expandTimed(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 1); err != nil {
		return nil, err
	}
	t0, v := e.gensym("t"), e.gensym("v")
	return &BlockExpr{
		Stmts: []Stmt{
			&LetStmt{Name: t0, Value: timeNs(), Line: mc.Line},
			&LetStmt{Name: v, Value: mc.Args[0], Line: mc.Line},
		},
		Value: &CallExpr{Callee: "namedtuple", Args: []Expr{
			&SymbolLit{Name: "value"}, &Ident{Name: v},
			&SymbolLit{Name: "time"}, elapsedSince(t0),
		}},
	}, nil
}

// @coalesce a b ... — the first non-missing argument, evaluating later
// arguments only while earlier ones came up missing.
func expandCoalesce(e *expander, mc *MacroCall) (Expr, error) {
	if len(mc.Args) == 0 {
		return &MissingLit{}, nil
	}
	result := e.gensym("co")
	stmts := []Stmt{&LetStmt{Name: result, Value: &MissingLit{}, Line: mc.Line}}
	for _, arg := range mc.Args {
		stmts = append(stmts, &IfStmt{
			Cond: &CallExpr{Callee: "ismissing", Args: []Expr{&Ident{Name: result}}},
			Then: []Stmt{&AssignStmt{Name: result, Value: arg, Line: mc.Line}},
			Line: mc.Line,
		})
	}
	return &BlockExpr{Stmts: stmts, Value: &Ident{Name: result}}, nil
}

// @view A start len — sugar for the aliasing view builtin.
func expandView(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 3); err != nil {
		return nil, err
	}
	return &CallExpr{Callee: "view", Args: mc.Args}, nil
}

func expandPassthrough(e *expander, mc *MacroCall) (Expr, error) {
	if err := wantArgs(mc, 1); err != nil {
		return nil, err
	}
	return mc.Args[0], nil
}

func expandInfo(e *expander, mc *MacroCall) (Expr, error) {
	args := append([]Expr{&StringLit{Value: "[ Info: "}}, mc.Args...)
	return &CallExpr{Callee: "println", Args: args}, nil
}

func expandErrorLog(e *expander, mc *MacroCall) (Expr, error) {
	args := append([]Expr{&StringLit{Value: "[ Error: "}}, mc.Args...)
	return &CallExpr{Callee: "println", Args: args}, nil
}

func expandGensym(e *expander, mc *MacroCall) (Expr, error) {
	return &SymbolLit{Name: e.gensym("gensym")}, nil
}

func expandLine(e *expander, mc *MacroCall) (Expr, error) {
	return &IntLit{Value: int64(mc.Line)}, nil
}

// The front end loads from a single source string, so there is no file
// path to report.
func expandFile(e *expander, mc *MacroCall) (Expr, error) {
	return &StringLit{Value: "<source>"}, nil
}

func expandModule(e *expander, mc *MacroCall) (Expr, error) {
	return &SymbolLit{Name: "Main"}, nil
}
