package grammar

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"

	"combo/internal/diagnostics"
)

func buildParser() (*participle.Parser[File], error) {
	return participle.Build[File](
		participle.Lexer(IRLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
}

func ParseFile(path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

func ParseString(name, source string) (*File, error) {
	parser, err := buildParser()
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	f, err := parser.ParseString(name, source)
	if err != nil {
		fmt.Print(diagnostics.Format(source, diagnostics.FromParseError(err)))
		return nil, err
	}
	return f, nil
}
