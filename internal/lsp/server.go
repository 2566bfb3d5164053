// Package lsp serves guest lint diagnostics over stdio JSON-RPC. The
// server re-analyzes a document synchronously on every open, change and
// save: single-file regex analysis is fast enough that debouncing would
// only add latency. Each publish carries the document version it was
// computed for so clients can discard stale batches.
package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"guestlint/internal/diag"
	"guestlint/internal/lint"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

const diagnosticSource = "guestlint"

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Linter *lint.Linter
	// Name and Version populate the initialize response.
	Name    string
	Version string
}

// Server handles stdio JSON-RPC for the guest linter.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	linter  *lint.Linter
	name    string
	version string

	openDocs  map[string]string
	versions  map[string]int
	lastDiags map[string][]diag.Diagnostic
	published map[string]struct{}

	workspaceRoot     string
	shutdownRequested bool
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	return &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		linter:    opts.Linter,
		name:      opts.Name,
		version:   opts.Version,
		openDocs:  make(map[string]string),
		versions:  make(map[string]int),
		lastDiags: make(map[string][]diag.Diagnostic),
		published: make(map[string]struct{}),
	}
}

// Run serves LSP requests until exit.
func (s *Server) Run() error {
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			HoverProvider: true,
		},
		ServerInfo: serverInfo{
			Name:    s.name,
			Version: s.version,
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()

	for _, uri := range uris {
		if err := s.sendPublish(uri, 0, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = params.TextDocument.Text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	return s.publishFor(uri)
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	text := applyChanges(s.openDocs[uri], params.ContentChanges)
	s.openDocs[uri] = text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	return s.publishFor(uri)
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if params.Text != nil {
		s.openDocs[uri] = *params.Text
	}
	s.mu.Unlock()
	return s.publishFor(uri)
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	delete(s.lastDiags, uri)
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		return s.sendPublish(uri, 0, nil)
	}
	return nil
}

// publishFor analyzes the current overlay text for uri and publishes the
// result. The version is captured before analysis and sent with the
// publish, so a client that has since edited further discards the batch.
func (s *Server) publishFor(uri string) error {
	s.mu.Lock()
	text, open := s.openDocs[uri]
	version := s.versions[uri]
	s.mu.Unlock()
	if !open {
		return nil
	}

	diags := s.linter.LintContent(uriToPath(uri), []byte(text))

	s.mu.Lock()
	if s.versions[uri] != version {
		// A newer change arrived while analyzing; its own publish is coming.
		s.mu.Unlock()
		return nil
	}
	s.lastDiags[uri] = diags
	s.published[uri] = struct{}{}
	s.mu.Unlock()

	list := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		list = append(list, toLSPDiagnostic(d))
	}
	return s.sendPublish(uri, version, list)
}

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)

	s.mu.Lock()
	diags := s.lastDiags[uri]
	s.mu.Unlock()

	for _, d := range diags {
		if d.Line-1 != params.Position.Line {
			continue
		}
		if params.Position.Character < d.Column || params.Position.Character >= maxCol(d) {
			continue
		}
		r := diagRange(d)
		return s.sendResponse(msg.ID, hover{
			Contents: markupContent{
				Kind:  "markdown",
				Value: s.hoverMarkdown(d),
			},
			Range: &r,
		})
	}
	return s.sendResponse(msg.ID, nil)
}

// hoverMarkdown renders rule metadata for a diagnostic under the cursor.
func (s *Server) hoverMarkdown(d diag.Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** `%s` (%s, %s)\n\n", d.RuleName, d.RuleID, d.Category, d.Severity)
	b.WriteString(d.Message)
	if r, ok := s.linter.Engine().Catalog().Get(d.RuleID); ok && r.DocReference != "" {
		fmt.Fprintf(&b, "\n\nSee: %s", r.DocReference)
	}
	return b.String()
}

func toLSPDiagnostic(d diag.Diagnostic) lspDiagnostic {
	return lspDiagnostic{
		Range:    diagRange(d),
		Severity: lspSeverity(d.Severity),
		Code:     d.RuleID,
		Source:   diagnosticSource,
		Message:  d.Message,
	}
}

func diagRange(d diag.Diagnostic) lspRange {
	return lspRange{
		Start: position{Line: d.Line - 1, Character: d.Column},
		End:   position{Line: d.Line - 1, Character: maxCol(d)},
	}
}

func maxCol(d diag.Diagnostic) int {
	if d.EndColumn > d.Column {
		return d.EndColumn
	}
	return d.Column + 1
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	case diag.SevInfo:
		return 3
	default:
		return 4
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, version int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Version:     version,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}
