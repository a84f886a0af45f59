package main

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	doc := s.docs.put(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.publishDiagnostics(ctx, doc)
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// full sync: the last change carries the whole text
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	uri := string(params.TextDocument.URI)
	doc := s.docs.put(uri, content, params.TextDocument.Version)
	s.publishDiagnostics(ctx, doc)
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.docs.remove(uri)
	if s.conn != nil {
		s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

// DidChangeWatchedFiles invalidates schemas whose backing files changed
// and revalidates every open document.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		s.svc.ResetSchema(string(change.URI))
	}
	for _, doc := range s.docs.all() {
		s.publishDiagnostics(ctx, doc)
	}
	return nil
}

func (s *Server) publishDiagnostics(ctx context.Context, doc *document) {
	diags := s.svc.Validate(ctx, doc.uri, doc.parsed)
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    lspRange(doc.parsed.Pos, d.Range),
			Severity: lspSeverity(d.Severity),
			Code:     d.Code,
			Source:   lsName,
			Message:  d.Message,
		})
	}
	s.logger.Debug("publishing diagnostics",
		zap.String("uri", doc.uri),
		zap.Int("count", len(out)))
	if s.conn != nil {
		s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentURI(doc.uri),
			Version:     uint32(doc.version),
			Diagnostics: out,
		})
	}
}
