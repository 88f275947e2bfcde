package vela

import (
	"github.com/vela-lang/vela/internal/asm"
	"github.com/vela-lang/vela/internal/bytecode"
)

// asmParser and asmLowerer adapt internal/asm's concrete Parse/Compiler
// pair to the Parser/Lowerer contracts, so New's default front end is
// wired the same way an embedder's custom one would be.
type asmParser struct{}

func (asmParser) Parse(source string) (any, error) { return asm.Parse(source) }

type asmLowerer struct{ compiler *asm.Compiler }

func (l asmLowerer) Lower(program any) (*bytecode.Chunk, error) {
	prog, ok := program.(*asm.Program)
	if !ok {
		return nil, &frontEndMismatchError{}
	}
	return l.compiler.Compile(prog)
}

type frontEndMismatchError struct{}

func (*frontEndMismatchError) Error() string {
	return "vela: LoadProgram's Parser and Lowerer must be from the same front end"
}

func defaultFrontEnd(e *Engine) (Parser, Lowerer) {
	return asmParser{}, asmLowerer{compiler: asm.NewCompiler(e.registry, e.methods)}
}
