// Package lsp implements a language server for palette scripts (.ppal):
// diagnostics, document colors, hover, completion, definitions, semantic
// tokens and formatting.
package lsp

import (
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const serverName = "pptxpalette-lsp"

var log = commonlog.GetLogger("pptxpalette.lsp")

type Server struct {
	handler protocol.Handler
	docs    *DocumentStore
	version string

	mu      sync.RWMutex
	results map[string]*AnalysisResult
}

func NewServer(version string) *Server {
	s := &Server{
		docs:    NewDocumentStore(),
		version: version,
		results: make(map[string]*AnalysisResult),
	}

	s.handler = protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.textDocumentDidOpen,
		TextDocumentDidChange:          s.textDocumentDidChange,
		TextDocumentDidClose:           s.textDocumentDidClose,
		TextDocumentColor:              s.textDocumentColor,
		TextDocumentColorPresentation:  s.textDocumentColorPresentation,
		TextDocumentHover:              s.textDocumentHover,
		TextDocumentCompletion:         s.textDocumentCompletion,
		TextDocumentDefinition:         s.textDocumentDefinition,
		TextDocumentFormatting:         s.textDocumentFormatting,
		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
	}

	return s
}

// Run serves over stdio. Logging is configured by the caller.
func (s *Server) Run() error {
	srv := server.NewServer(&s.handler, serverName, false)
	return srv.RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: semanticTokensLegend(),
		Full:   true,
	}

	if params.ClientInfo != nil {
		log.Infof("client %s connected", params.ClientInfo.Name)
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.docs.Set(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.analyze(ctx, uri)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	for _, change := range params.ContentChanges {
		if c, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.docs.Set(uri, c.Text, params.TextDocument.Version)
		}
	}
	s.analyze(ctx, uri)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.docs.Close(uri)

	s.mu.Lock()
	delete(s.results, uri)
	s.mu.Unlock()

	// Clear diagnostics for the closed document.
	if ctx != nil {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

// analyze re-runs the analyzer on uri, caches the result and publishes its
// diagnostics.
func (s *Server) analyze(ctx *glsp.Context, uri string) *AnalysisResult {
	content, ok := s.docs.Get(uri)
	if !ok {
		return nil
	}
	result := Analyze(uri, content)

	s.mu.Lock()
	s.results[uri] = result
	s.mu.Unlock()

	if ctx != nil {
		diags := result.Diagnostics
		if diags == nil {
			diags = []protocol.Diagnostic{}
		}
		params := protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentUri(uri),
			Diagnostics: diags,
		}
		if v, ok := s.docs.Version(uri); ok {
			version := protocol.UInteger(v)
			params.Version = &version
		}
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, params)
	}
	log.Debugf("analyzed %s: %d diagnostics", uri, len(result.Diagnostics))
	return result
}

// getResult returns the cached analysis of uri, analyzing on demand when the
// document is open but has not been analyzed yet.
func (s *Server) getResult(uri string) *AnalysisResult {
	s.mu.RLock()
	result, ok := s.results[uri]
	s.mu.RUnlock()
	if ok {
		return result
	}
	return s.analyze(nil, uri)
}
