package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// IRLexer tokenizes the flat textual IR notation internal/ir's Print()
// emits and internal/irtext parses back into a graph (spec.md §6's
// "assembly notation" for SSA graphs). Unlike the Kanso source language
// this grammar package used to host, the IR text has no nested expression
// grammar, so one Root state covers it — no need for the stateful,
// multi-state lexer a real source language would require.
var IRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `//[^\n]*`, Action: nil},
		{Name: "String", Pattern: `"[^"]*"`, Action: nil},
		{Name: "NodeRef", Pattern: `%[0-9]+`, Action: nil},
		{Name: "BlockRef", Pattern: `bb[0-9]+`, Action: nil},
		{Name: "Rel", Pattern: `==|!=|<=|>=|<|>`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?`, Action: nil},
		{Name: "Punct", Pattern: `[{}()\[\].,:#@=]`, Action: nil},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})
