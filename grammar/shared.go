package grammar

// Operand is a reference to a value- or control-producing node, written
// "%N" in the IR text (internal/ir's printer ref() for any non-Block
// node). Block references only ever appear in a Block's predecessor list,
// never as an instruction operand, so Operand only needs to carry a
// NodeRef.
type Operand struct {
	Ref string `@NodeRef`
}

// Instr is every instruction shape the printer emits, as a union of
// subtypes — the same "one pointer field per alternative" idiom this
// package used for Kanso's Statement. Opcodes with their own fixed payload
// shape (Const's bare value, SymConst's quoted entity, Proj's "#index",
// Cmp/Confirm's trailing relation, Call's "@entity(args)", Phi's bracketed
// list) get their own type; everything else — the binary arithmetic
// opcodes, Cond, Switch — falls through to GenericInstr. Literal-keyword
// alternatives are listed before GenericInstr so e.g. "Const.i32 5" is
// never swallowed by the generic catch-all.
type Instr struct {
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
}

type JmpInstr struct {
	Keyword string `@"Jmp"`
}

type ReturnInstr struct {
	Args []*Operand `"Return" [ @@ { "," @@ } ]`
}

type ConstInstr struct {
	Result string `@NodeRef "=" "Const" "."`
	Mode   string `@Ident`
	Value  string `@Number`
}

type SymConstInstr struct {
	Result string `@NodeRef "=" "SymConst" "."`
	Mode   string `@Ident`
	Entity string `@String`
}

type ProjInstr struct {
	Result string   `@NodeRef "=" "Proj" "."`
	Mode   string   `@Ident`
	Arg    *Operand `@@`
	Index  string   `"#" @Number`
}

type CmpInstr struct {
	Result string   `@NodeRef "=" "Cmp" "."`
	Mode   string   `@Ident`
	Left   *Operand `@@ ","`
	Right  *Operand `@@`
	Rel    string   `@Rel`
}

type ConfirmInstr struct {
	Result string   `@NodeRef "=" "Confirm" "."`
	Mode   string   `@Ident`
	Left   *Operand `@@ ","`
	Right  *Operand `@@`
	Rel    string   `@Rel`
}

type CallInstr struct {
	Result string     `@NodeRef "=" "Call" "."`
	Mode   string     `@Ident`
	Entity string     `"@" @Ident { @"." @Ident } "("`
	Args   []*Operand `[ @@ { "," @@ } ] ")"`
}

type PhiInstr struct {
	Result string     `@NodeRef "=" "Phi" "."`
	Mode   string     `@Ident`
	Args   []*Operand `"[" [ @@ { "," @@ } ] "]"`
}

// GenericInstr covers Cond, Switch, Mux, and the binary-arithmetic opcodes
// (Add, Sub, Mul, And, Or, Eor, Shl, Shr, Shrs, Rotl): "%N = OP.MODE args".
type GenericInstr struct {
	Result string     `@NodeRef "="`
	Op     string     `@Ident "."`
	Mode   string     `@Ident`
	Args   []*Operand `[ @@ { "," @@ } ]`
}
