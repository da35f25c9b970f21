// Package lsp hosts COMBO as an editor-facing service over the flat textual
// IR format: didOpen/didChange re-run the pass and publish diagnostics;
// hover exposes the formatting-only "partition id and lattice type" debug
// sink spec.md §6 describes. Adapted from the teacher's Kanso-source LSP
// front end (KansoHandler in this same package, before this rework) onto
// the textual IR grammar instead of Kanso source.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"combo/internal/combo"
	"combo/internal/diagnostics"
	"combo/internal/ir"
	"combo/internal/irtext"
)

// document is the last successfully analyzed state of one open file. A file
// that fails to parse has no document entry; its diagnostics are reported
// but hover has nothing to answer with until the next successful build.
type document struct {
	source string
	graph  *ir.Graph
	info   map[*ir.Node]combo.PartitionInfo
	refs   map[string]*ir.Node
}

// ComboHandler implements the glsp server handlers hosting COMBO.
type ComboHandler struct {
	mu   sync.RWMutex
	docs map[string]*document
}

func NewComboHandler() *ComboHandler {
	return &ComboHandler{docs: map[string]*document{}}
}

func (h *ComboHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("combo-lsp Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			HoverProvider: ptrBool(true),
		},
	}, nil
}

func (h *ComboHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("combo-lsp Initialized")
	return nil
}

func (h *ComboHandler) Shutdown(ctx *glsp.Context) error {
	log.Println("combo-lsp Shutdown")
	return nil
}

func (h *ComboHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("Opened file: %s\n", params.TextDocument.URI)
	return h.reanalyzeAndPublish(ctx, params.TextDocument.URI)
}

func (h *ComboHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Printf("Changed file: %s\n", params.TextDocument.URI)
	return h.reanalyzeAndPublish(ctx, params.TextDocument.URI)
}

func (h *ComboHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("Closed file: %s\n", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.docs, path)
	return nil
}

// TextDocumentHover reports the hovered reference's final partition id and
// lattice type, formatting only — never consulted by the pass itself.
func (h *ComboHandler) TextDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.RLock()
	doc, ok := h.docs[path]
	h.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	ref := referenceAt(doc.source, params.Position)
	if ref == "" {
		return nil, nil
	}
	n, ok := doc.refs[ref]
	if !ok {
		return nil, nil
	}

	text := describeNode(n, doc.info)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: text,
		},
	}, nil
}

func describeNode(n *ir.Node, info map[*ir.Node]combo.PartitionInfo) string {
	if pi, ok := info[n]; ok {
		return fmt.Sprintf("%s.%s — partition P%d, type %s", n.Op, n.Mode, pi.PartitionID, pi.Type)
	}
	// Nodes materialized by the rewriter after the solve (fresh constant-
	// fold results) never entered the solver, so they have no wrapper to
	// report — describe them from their own Attr instead.
	if n.Op == ir.OpConst {
		return fmt.Sprintf("%s.%s — constant-folded, no partition (node created by rewrite)", n.Op, n.Mode)
	}
	return fmt.Sprintf("%s.%s", n.Op, n.Mode)
}

// referenceAt returns the %N/bbN token under position pos in source, or ""
// if the cursor isn't over one.
func referenceAt(source string, pos protocol.Position) string {
	lines := strings.Split(source, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isRefRune(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isRefRune(line[end]) {
		end++
	}
	if start == end {
		return ""
	}
	tok := line[start:end]
	if tok == "" || (tok[0] != '%' && !strings.HasPrefix(tok, "bb")) {
		return ""
	}
	return tok
}

func isRefRune(c byte) bool {
	return c == '%' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
}

func (h *ComboHandler) reanalyzeAndPublish(ctx *glsp.Context, uri protocol.DocumentUri) error {
	diags, err := h.reanalyze(uri)
	if err != nil {
		return err
	}
	sendDiagnosticNotification(ctx, uri, toProtocolDiagnostics(diags))
	return nil
}

// reanalyze re-reads the file from disk (same pattern the teacher's
// updateAST used — the LSP client has already written the edited buffer to
// disk by the time didChange fires, since this server only advertises full-
// document sync), rebuilds its graph, and runs COMBO over it.
func (h *ComboHandler) reanalyze(rawURI protocol.DocumentUri) ([]diagnostics.Diagnostic, error) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	source := string(content)

	result, err := irtext.BuildFirst(path, source)
	if err != nil {
		return []diagnostics.Diagnostic{diagnostics.FromParseError(err)}, nil
	}

	info, _, err := combo.Inspect(result.Graph, combo.DefaultConfig(), nil)
	if err != nil {
		return []diagnostics.Diagnostic{{
			Severity: diagnostics.SeverityError,
			Source:   "combo",
			Message:  err.Error(),
		}}, nil
	}

	h.mu.Lock()
	h.docs[path] = &document{source: source, graph: result.Graph, info: info, refs: result.Refs}
	h.mu.Unlock()

	return diagnostics.ScanUnoptCF(result.Graph), nil
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diags []protocol.Diagnostic) {
	log.Printf("Sending %d diagnostics for %s\n", len(diags), uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
