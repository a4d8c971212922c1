package lspserver

import (
	"context"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"texlab-go/internal/project"
	"texlab-go/internal/query"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

func (s *Server) handleCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil)
	}
	proj, _, _ := s.projectFor(doc)
	offset := toOffset(doc, params.Position)
	cfg := s.store.GetConfig()

	items := query.Complete(proj, doc, offset, s.comp, s.dist, cfg)
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, item := range items {
		edit := &protocol.TextEdit{
			Range:   toProtocolRange(doc, item.Range),
			NewText: item.Label,
		}
		out = append(out, protocol.CompletionItem{
			Label:    item.Label,
			Detail:   item.Detail,
			Kind:     completionItemKind(item.Kind),
			TextEdit: edit,
		})
	}
	return reply(ctx, protocol.CompletionList{IsIncomplete: false, Items: out}, nil)
}

// handleCompletionResolve currently has nothing to add lazily — every
// detail is computed up front — so the item echoes back unchanged.
func (s *Server) handleCompletionResolve(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var item protocol.CompletionItem
	if err := unmarshalParams(req, &item); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	return reply(ctx, item, nil)
}

func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, nil, nil)
	}
	proj, _, _ := s.projectFor(doc)
	h, found := query.HoverAt(proj, doc, toOffset(doc, params.Position), s.comp, s.store.GetConfig())
	if !found {
		return reply(ctx, nil, nil)
	}
	rng := toProtocolRange(doc, h.Range)
	return reply(ctx, protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.PlainText, Value: h.Text},
		Range:    &rng,
	}, nil)
}

func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DefinitionParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []protocol.LocationLink{}, nil)
	}
	proj, snap, g := s.projectFor(doc)
	links := query.Definition(proj, doc, toOffset(doc, params.Position), g)

	out := make([]protocol.LocationLink, 0, len(links))
	for _, l := range links {
		target, found := snap.Lookup(l.TargetURI)
		if !found {
			continue
		}
		origin := toProtocolRange(doc, l.OriginRange)
		out = append(out, protocol.LocationLink{
			OriginSelectionRange: &origin,
			TargetURI:            docURI(l.TargetURI),
			TargetRange:          toProtocolRange(target, l.TargetRange),
			TargetSelectionRange: toProtocolRange(target, l.TargetSelectionRange),
		})
	}
	return reply(ctx, out, nil)
}

func (s *Server) handleReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []protocol.Location{}, nil)
	}
	proj, snap, _ := s.projectFor(doc)
	refs := query.References(proj, doc, toOffset(doc, params.Position), params.Context.IncludeDeclaration)

	out := make([]protocol.Location, 0, len(refs))
	for _, r := range refs {
		target, found := snap.Lookup(r.URI)
		if !found {
			continue
		}
		out = append(out, protocol.Location{URI: docURI(r.URI), Range: toProtocolRange(target, r.Range)})
	}
	return reply(ctx, out, nil)
}

func (s *Server) handleDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []protocol.DocumentSymbol{}, nil)
	}
	proj, _, _ := s.projectFor(doc)
	symbols := query.DocumentSymbols(proj, doc, s.store.GetConfig())
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, toDocumentSymbol(doc, sym))
	}
	return reply(ctx, out, nil)
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.WorkspaceSymbolParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	snap, _ := s.snapshotGraph()

	// Workspace symbols span every project; the documents are fed in
	// project ordering (roots first) so the flattened sort is stable.
	docs := snap.Iter()
	project.Order(docs)
	all := &project.Project{Documents: docs}
	flat := query.WorkspaceSymbols(docs, all, s.store.GetConfig(), params.Query)

	out := make([]protocol.SymbolInformation, 0, len(flat))
	for _, sym := range flat {
		doc, found := snap.Lookup(sym.URI)
		if !found {
			continue
		}
		out = append(out, protocol.SymbolInformation{
			Name: sym.Name,
			Kind: symbolKind(sym.Kind),
			Location: protocol.Location{
				URI:   docURI(sym.URI),
				Range: toProtocolRange(doc, sym.Range),
			},
		})
	}
	return reply(ctx, out, nil)
}

func (s *Server) handleFoldingRange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.FoldingRangeParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []protocol.FoldingRange{}, nil)
	}
	folds := query.Foldings(doc, s.store.GetConfig())
	out := make([]protocol.FoldingRange, 0, len(folds))
	for _, f := range folds {
		start := doc.Lines.ToLineCol(f.Range.Start)
		end := doc.Lines.ToLineCol(f.Range.End)
		out = append(out, protocol.FoldingRange{
			StartLine:      start.Line,
			StartCharacter: start.Character,
			EndLine:        end.Line,
			EndCharacter:   end.Character,
			Kind:           foldingKind(f.Kind),
		})
	}
	return reply(ctx, out, nil)
}

func (s *Server) handleDocumentLink(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentLinkParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []protocol.DocumentLink{}, nil)
	}
	_, g := s.snapshotGraph()
	links := query.DocumentLinks(doc, g)
	out := make([]protocol.DocumentLink, 0, len(links))
	for _, l := range links {
		out = append(out, protocol.DocumentLink{
			Range:  toProtocolRange(doc, l.Range),
			Target: docURI(l.TargetURI),
		})
	}
	return reply(ctx, out, nil)
}

func (s *Server) handleDocumentHighlight(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentHighlightParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []protocol.DocumentHighlight{}, nil)
	}
	highlights := query.Highlights(doc, toOffset(doc, params.Position))
	out := make([]protocol.DocumentHighlight, 0, len(highlights))
	for _, h := range highlights {
		kind := protocol.DocumentHighlightKind(2) // Read
		if h.Kind == query.HighlightWrite {
			kind = protocol.DocumentHighlightKind(3) // Write
		}
		out = append(out, protocol.DocumentHighlight{Range: toProtocolRange(doc, h.Range), Kind: kind})
	}
	return reply(ctx, out, nil)
}

func (s *Server) handleSemanticTokensRange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.SemanticTokensRangeParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, &protocol.SemanticTokens{Data: []uint32{}}, nil)
	}
	proj, _, _ := s.projectFor(doc)
	viewport := syntax.Range{
		Start: toOffset(doc, params.Range.Start),
		End:   toOffset(doc, params.Range.End),
	}
	data := query.SemanticTokens(proj, doc, viewport)
	if data == nil {
		data = []uint32{}
	}
	return reply(ctx, &protocol.SemanticTokens{Data: data}, nil)
}

func (s *Server) handlePrepareRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.PrepareRenameParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, nil, nil)
	}
	proj, _, _ := s.projectFor(doc)
	rng, found := query.PrepareRename(proj, doc, toOffset(doc, params.Position))
	if !found {
		return reply(ctx, nil, nil)
	}
	out := toProtocolRange(doc, rng)
	return reply(ctx, &out, nil)
}

func (s *Server) handleRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.RenameParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, nil, nil)
	}
	proj, snap, _ := s.projectFor(doc)
	edits, found := query.Rename(proj, doc, toOffset(doc, params.Position), params.NewName, s.store.GetConfig())
	if !found {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, workspaceEditFrom(snap, edits), nil)
}

func workspaceEditFrom(snap *workspace.Snapshot, edits map[string][]query.TextEdit) protocol.WorkspaceEdit {
	changes := map[protocol.DocumentURI][]protocol.TextEdit{}
	for u, docEdits := range edits {
		doc, ok := snap.Lookup(u)
		if !ok {
			continue
		}
		out := make([]protocol.TextEdit, 0, len(docEdits))
		for _, e := range docEdits {
			out = append(out, protocol.TextEdit{Range: toProtocolRange(doc, e.Range), NewText: e.NewText})
		}
		changes[docURI(u)] = out
	}
	return protocol.WorkspaceEdit{Changes: changes}
}

// inlayHintParams and inlayHint are declared locally: the request joined
// LSP after the protocol module's version pinned here, so the wire
// structs are spelled out by hand.
type inlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

type inlayHint struct {
	Position protocol.Position `json:"position"`
	Label    string            `json:"label"`
	Kind     int               `json:"kind,omitempty"`
	Tooltip  string            `json:"tooltip,omitempty"`
}

func (s *Server) handleInlayHint(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params inlayHintParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []inlayHint{}, nil)
	}
	proj, _, _ := s.projectFor(doc)
	viewport := syntax.Range{
		Start: toOffset(doc, params.Range.Start),
		End:   toOffset(doc, params.Range.End),
	}
	hints := query.InlayHints(proj, doc, viewport, s.store.GetConfig())
	out := make([]inlayHint, 0, len(hints))
	for _, h := range hints {
		pos := doc.Lines.ToLineCol(h.Offset)
		out = append(out, inlayHint{
			Position: protocol.Position{Line: pos.Line, Character: pos.Character},
			Label:    h.Text,
		})
	}
	return reply(ctx, out, nil)
}
