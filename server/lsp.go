// Package server implements the stax language server. Editor features are
// computed directly from the lexer and parser: both are pure and cheap, so
// every request re-tokenizes the document it touches.
package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/stax/compiler"
	"github.com/chazu/stax/pkg/bytecode"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "stax-lsp"

// LspServer serves LSP requests over stdio.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "stax LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			text := whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}

	return complete(text, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	return hover(text, word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	decl, ok := findDeclaration(text, word)
	if !ok {
		return nil, nil
	}

	return []protocol.Location{{
		URI:   params.TextDocument.URI,
		Range: tokenRange(decl),
	}}, nil
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnosticsFor(text)

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnosticsFor compiles the document and converts the first error, if
// any, into an LSP diagnostic at its source position.
func diagnosticsFor(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	_, err := compiler.Compile(text)
	if err == nil {
		return diagnostics
	}

	line, col, length := errorSpan(err)
	severity := protocol.DiagnosticSeverityError
	source := lspName
	diagnostics = append(diagnostics, protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + length},
		},
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	})
	return diagnostics
}

// errorSpan extracts a 0-based (line, column, length) span from a
// compile error. Errors without a source token map to the document start.
func errorSpan(err error) (line, col, length protocol.UInteger) {
	var pos1, line1, n int

	var unknown *compiler.UnknownTokenError
	var parse *compiler.ParseError
	var notFound *bytecode.FunctionNotFoundError
	switch {
	case errors.As(err, &unknown):
		pos1, line1, n = unknown.Pos, unknown.Line, len(unknown.Word)
	case errors.As(err, &parse):
		pos1, line1, n = parse.Pos, parse.Line, len(parse.Word)
	case errors.As(err, &notFound):
		pos1, line1, n = notFound.Pos, notFound.Line, len(notFound.Name)
	}

	if line1 > 0 {
		line = protocol.UInteger(line1 - 1)
	}
	if pos1 > 0 {
		col = protocol.UInteger(pos1 - 1)
	}
	if n > 0 {
		length = protocol.UInteger(n)
	}
	return line, col, length
}

// --- Completion / hover / definition logic ---

// keywordDocs describes each word of the language with its Forth-style
// stack effect.
var keywordDocs = map[string]string{
	"print": "`( a -- )` pop the top value and emit it",
	"pop":   "`( a -- )` pop and discard the top value",
	"dup":   "`( a -- a a )` duplicate the top value",
	"swap":  "`( a b -- b a )` swap the top two values",
	"rot":   "`( a b c -- b c a )` rotate the third value to the top",
	"over":  "`( a b -- a b a )` copy the second value to the top",
	"nip":   "`( a b -- b )` remove the second value",
	"+":     "`( a b -- a+b )` add the top two values",
	"-":     "`( a b -- a-b )` subtract the top value from the second",
	"*":     "`( a b -- a*b )` multiply the top two values",
	"/":     "`( a b -- a/b )` divide the second value by the top (truncating)",
	"while": "`( a -- a )` enter the loop body while the top value is non-zero; the condition is peeked, not popped",
	"end":   "close the innermost `while` or `if`/`else` block",
	"if":    "`( a -- a )` run the branch when the top value is non-zero; the condition is peeked, not popped",
	"else":  "taken when the `if` condition was zero",
	"fun":   "declare a function; `fun name` makes the following instructions callable as `name`",
	"ret":   "return to the caller; returning with an empty call stack ends the program",
}

func complete(text, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	for word := range keywordDocs {
		if strings.HasPrefix(word, prefix) {
			kind := protocol.CompletionItemKindKeyword
			doc := keywordDocs[word]
			wordCopy := word
			items = append(items, protocol.CompletionItem{
				Label:         word,
				Kind:          &kind,
				Documentation: doc,
				InsertText:    &wordCopy,
			})
		}
	}

	for _, fn := range declaredFunctions(text) {
		if strings.HasPrefix(fn.Literal, prefix) {
			kind := protocol.CompletionItemKindFunction
			detail := fmt.Sprintf("fun %s (line %d)", fn.Literal, fn.Line)
			name := fn.Literal
			items = append(items, protocol.CompletionItem{
				Label:      name,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &name,
			})
		}
	}

	return items
}

func hover(text, word string) *protocol.Hover {
	var b strings.Builder

	if doc, ok := keywordDocs[word]; ok {
		fmt.Fprintf(&b, "**%s**\n\n%s", word, doc)
	} else if decl, ok := findDeclaration(text, word); ok {
		fmt.Fprintf(&b, "**fun %s**\n\nDeclared on line %d.", word, decl.Line)
	} else {
		return nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// declaredFunctions returns the name tokens of all fun declarations in
// the document, in declaration order. Lex errors truncate the result.
func declaredFunctions(text string) []compiler.Token {
	tokens, _ := compiler.Tokenize(text)
	var decls []compiler.Token
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Type == compiler.TokenFun && tokens[i+1].Type == compiler.TokenIdent {
			decls = append(decls, tokens[i+1])
		}
	}
	return decls
}

// findDeclaration locates the fun declaration of the named function.
func findDeclaration(text, name string) (compiler.Token, bool) {
	for _, decl := range declaredFunctions(text) {
		if decl.Literal == name {
			return decl, true
		}
	}
	return compiler.Token{}, false
}

// tokenRange converts a token's 1-based position to an LSP range.
func tokenRange(tok compiler.Token) protocol.Range {
	line := protocol.UInteger(0)
	col := protocol.UInteger(0)
	if tok.Line > 0 {
		line = protocol.UInteger(tok.Line - 1)
	}
	if tok.Pos > 0 {
		col = protocol.UInteger(tok.Pos - 1)
	}
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: col},
		End:   protocol.Position{Line: line, Character: col + protocol.UInteger(len(tok.Literal))},
	}
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the word
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	if start == col {
		return ""
	}

	return line[start:col]
}

// extractWord returns the full word under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	isWordRune := func(ch rune) bool {
		return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
	}

	// Find start
	start := col
	for start > 0 && isWordRune(rune(line[start-1])) {
		start--
	}

	// Find end
	end := col
	for end < len(line) && isWordRune(rune(line[end])) {
		end++
	}

	if start == end {
		// Maybe an operator under the cursor
		if col < len(line) && strings.ContainsRune("+-*/", rune(line[col])) {
			return string(line[col])
		}
		return ""
	}

	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
