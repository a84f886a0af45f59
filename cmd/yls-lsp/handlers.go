package main

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/yamlkit/yls/language"
)

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}
	offset := docOffset(doc.parsed.Pos, params.Position)
	items := s.svc.Complete(ctx, doc.uri, doc.parsed, offset)
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		kind := protocol.CompletionItemKindValue
		if it.IsProperty {
			kind = protocol.CompletionItemKindProperty
		}
		out = append(out, protocol.CompletionItem{
			Label:         it.Label,
			Kind:          kind,
			Detail:        it.Detail,
			Documentation: it.Documentation,
			InsertText:    it.InsertText,
			SortText:      it.SortText,
		})
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: out}, nil
}

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}
	offset := docOffset(doc.parsed.Pos, params.Position)
	h := s.svc.Hover(ctx, doc.uri, doc.parsed, offset)
	if h == nil {
		return nil, nil
	}
	rng := lspRange(doc.parsed.Pos, h.Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: h.Markdown,
		},
		Range: &rng,
	}, nil
}

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}
	syms := language.Symbols(doc.parsed)
	out := make([]interface{}, 0, len(syms))
	for _, sym := range lspSymbols(doc, syms) {
		out = append(out, sym)
	}
	return out, nil
}

func lspSymbols(doc *document, syms []language.Symbol) []protocol.DocumentSymbol {
	res := make([]protocol.DocumentSymbol, 0, len(syms))
	for _, sym := range syms {
		rng := lspRange(doc.parsed.Pos, sym.Range)
		res = append(res, protocol.DocumentSymbol{
			Name:           sym.Name,
			Detail:         sym.Detail,
			Kind:           lspSymbolKind(sym.Kind),
			Range:          rng,
			SelectionRange: rng,
			Children:       lspSymbols(doc, sym.Children),
		})
	}
	return res
}

func (s *Server) Formatting(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}
	edits, err := s.svc.Format(doc.parsed)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, protocol.TextEdit{
			Range:   lspRange(doc.parsed.Pos, e.Range),
			NewText: e.NewText,
		})
	}
	return out, nil
}
