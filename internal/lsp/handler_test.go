package lsp_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"combo/internal/lsp"
)

const fixture = `
graph e1 {
  block bb0 entry() {
    %1 = Const.i32 2
    %2 = Const.i32 3
    %3 = Add.i32 %1, %2
    Return %3
  }
}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "e1.ir")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return path
}

func TestDidOpenPublishesNoDiagnosticsForCleanGraph(t *testing.T) {
	path := writeFixture(t)
	uri := "file://" + filepath.ToSlash(path)

	handler := lsp.NewComboHandler()

	var published []protocol.Diagnostic
	captured := false
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			captured = true
			if p, ok := params.(*protocol.PublishDiagnosticsParams); ok {
				published = p.Diagnostics
			}
		},
	}

	err := handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri},
	})
	require.NoError(t, err)
	require.True(t, captured, "expected a publishDiagnostics notification")
	require.Empty(t, published)
}

func TestHoverReportsPartitionInfoForKnownRef(t *testing.T) {
	path := writeFixture(t)
	uri := "file://" + filepath.ToSlash(path)

	handler := lsp.NewComboHandler()
	ctx := &glsp.Context{Notify: func(string, any) {}}
	require.NoError(t, handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri},
	}))

	hover, err := handler.TextDocumentHover(ctx, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 4, Character: 5}, // "    %2 = Const.i32 3"
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)

	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	require.Contains(t, content.Value, "Const")
}
