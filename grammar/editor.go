//go:build editor
// +build editor

package grammar

// EditorInstr mirrors Instr but with an extra error-recovery alternative,
// for tooling (an LSP live-typing pass, a grammar playground) that wants to
// keep parsing the rest of a block after one malformed instruction line
// rather than aborting the whole file — the same purpose this package's
// editor-tagged AST served for Kanso source.
type EditorInstr struct {
	Jmp      *JmpInstr      `  @@`
	Return   *ReturnInstr   `| @@`
	Const    *ConstInstr    `| @@`
	SymConst *SymConstInstr `| @@`
	Proj     *ProjInstr     `| @@`
	Cmp      *CmpInstr      `| @@`
	Confirm  *ConfirmInstr  `| @@`
	Call     *CallInstr     `| @@`
	Phi      *PhiInstr      `| @@`
	Generic  *GenericInstr  `| @@`
	Error    *ErrorInstr    `| @@`
}

type ErrorInstr struct {
	Unexpected []string `(@Ident | @NodeRef | @BlockRef | @Number | @String | @Rel)+`
}
