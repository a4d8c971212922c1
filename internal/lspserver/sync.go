package lspserver

import (
	"context"
	"encoding/json"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"texlab-go/internal/external"
	"texlab-go/internal/graph"
	"texlab-go/internal/project"
	"texlab-go/internal/query"
	"texlab-go/internal/watcher"
	"texlab-go/internal/workspace"
)

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}

	s.mu.Lock()
	if params.RootURI != "" {
		s.workspaceRoot = workspace.PathFromURI(string(params.RootURI))
	}
	s.mu.Unlock()

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
				Save:      &protocol.SaveOptions{},
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider:   true,
				TriggerCharacters: []string{"\\", "{", "}", "@", "/", " "},
			},
			HoverProvider:             true,
			DefinitionProvider:        true,
			ReferencesProvider:        true,
			DocumentSymbolProvider:    true,
			WorkspaceSymbolProvider:   true,
			FoldingRangeProvider:      true,
			DocumentLinkProvider:      &protocol.DocumentLinkOptions{},
			DocumentHighlightProvider: true,
			DocumentFormattingProvider: true,
			RenameProvider: map[string]interface{}{
				"prepareProvider": true,
			},
			SemanticTokensProvider: map[string]interface{}{
				"legend": map[string]interface{}{
					"tokenTypes":     query.TokenTypes,
					"tokenModifiers": query.TokenModifiers,
				},
				"range": true,
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{
					"texlab.cleanAuxiliary",
					"texlab.cleanArtifacts",
					"texlab.build",
					"texlab.forwardSearch",
					"texlab.changeEnvironment",
				},
			},
			Experimental: map[string]interface{}{
				"inlayHintProvider": true,
			},
		},
	}
	return reply(ctx, result, nil)
}

// handleInitialized starts the filesystem watcher and runs the first
// discovery pass.
func (s *Server) handleInitialized(ctx context.Context) {
	w, err := watcher.New(publishDebounce, func(paths []string) {
		for _, p := range paths {
			watcher.ReloadExternalChange(s.store, p)
		}
		s.afterMutation()
	})
	if err != nil {
		s.logger.Warn("watcher unavailable", zap.Error(err))
	} else {
		s.mu.Lock()
		s.watch = w
		s.mu.Unlock()
	}
	s.afterMutation()
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	u := string(params.TextDocument.URI)
	lang, ok := workspace.LanguageFromPath(workspace.PathFromURI(u))
	if !ok {
		lang = languageFromID(string(params.TextDocument.LanguageID))
	}
	s.store.Open(u, params.TextDocument.Text, lang, workspace.OwnerClient)
	if s.store.GetConfig().Chktex.OnOpenAndSave {
		s.runChktex(ctx, u)
	}
	s.afterMutation()
	return reply(ctx, nil, nil)
}

func languageFromID(id string) workspace.Language {
	switch id {
	case "bibtex":
		return workspace.LanguageBib
	default:
		return workspace.LanguageTex
	}
}

// contentChange is unmarshalled by hand so both full and incremental
// sync payloads are accepted: a missing range means "replace everything".
type contentChange struct {
	Range *protocol.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}

type didChangeParams struct {
	TextDocument   protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                          `json:"contentChanges"`
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params didChangeParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	u := string(params.TextDocument.URI)
	doc, ok := s.store.Lookup(u)
	if !ok {
		return reply(ctx, nil, nil)
	}

	text := doc.Text
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			text = change.Text
			continue
		}
		// The splice has to be computed against the text as it stands
		// after the previous change, so the line index is rebuilt per
		// step.
		lines := workspace.NewLineIndex(text)
		start := lines.ToOffset(workspace.Position{Line: change.Range.Start.Line, Character: change.Range.Start.Character})
		end := lines.ToOffset(workspace.Position{Line: change.Range.End.Line, Character: change.Range.End.Character})
		text = text[:start] + change.Text + text[end:]
	}

	s.store.Open(u, text, doc.Language, doc.Owner)
	if s.store.GetConfig().Chktex.OnEdit {
		s.runChktex(ctx, u)
	}
	s.afterMutation()
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	u := string(params.TextDocument.URI)

	// Keep the document under Server ownership if the dependency graph
	// still references it, otherwise evict it.
	_, g := s.snapshotGraph()
	if isReferenced(g, u) {
		s.store.Downgrade(u)
	} else {
		s.store.Delete(u)
	}
	s.afterMutation()
	return reply(ctx, nil, nil)
}

func isReferenced(g *graph.Graph, uri string) bool {
	for _, edges := range g.Outgoing {
		for _, e := range edges {
			if e.TargetURI == uri {
				return true
			}
		}
	}
	return false
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	u := string(params.TextDocument.URI)
	cfg := s.store.GetConfig()

	if cfg.Chktex.OnOpenAndSave {
		s.runChktex(ctx, u)
	}
	if cfg.Build.OnSave {
		go s.runBuild(context.Background(), u, nil)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChangeConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params struct {
		Settings json.RawMessage `json:"settings"`
	}
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}

	var wrapper struct {
		Texlab json.RawMessage `json:"texlab"`
	}
	section := params.Settings
	if err := json.Unmarshal(params.Settings, &wrapper); err == nil && len(wrapper.Texlab) > 0 {
		section = wrapper.Texlab
	}

	// JSON is a subset of YAML, so the settings payload funnels through
	// the same decoder as the config file; unknown or invalid fields
	// degrade to defaults rather than rejecting the whole push.
	cfg := s.store.GetConfig().Clone()
	if err := yaml.Unmarshal(section, cfg); err != nil {
		s.logger.Warn("invalid configuration push ignored", zap.Error(err))
		return reply(ctx, nil, nil)
	}
	s.store.SetConfig(cfg)
	s.diag.Reset()
	s.reparseAll()
	s.afterMutation()
	return reply(ctx, nil, nil)
}

// reparseAll re-opens every document with its current text so new syntax
// configuration (verbatim lists, command tables) takes effect.
func (s *Server) reparseAll() {
	for _, doc := range s.store.Iter() {
		s.store.Open(doc.URI, doc.Text, doc.Language, doc.Owner)
	}
}

// afterMutation runs the discovery loop, refreshes per-document syntax
// diagnostics, re-syncs the watcher and schedules a debounced
// publication.
func (s *Server) afterMutation() {
	s.mu.Lock()
	root := s.workspaceRoot
	w := s.watch
	s.mu.Unlock()

	cfgRebuild := func(snap *workspace.Snapshot) *graph.Graph {
		cfg := s.store.GetConfig()
		currentDir := func(doc *workspace.Document) string {
			return project.CurrentDirectory(snap, cfg, doc)
		}
		return graph.Build(snap, currentDir, s.comp, s.dist, nil)
	}
	if root != "" {
		watcher.DiscoverFixedPoint(s.store, root, cfgRebuild)
	}

	// Per-document syntax diagnostics are independent tree walks, so they
	// fan out across the worker pool.
	snap := s.store.Snapshot()
	var eg errgroup.Group
	eg.SetLimit(4)
	for _, doc := range snap.Iter() {
		doc := doc
		eg.Go(func() error {
			s.diag.UpdateSyntax(doc)
			if doc.Log != nil {
				s.diag.UpdateBuildLog(snap, doc)
			}
			return nil
		})
	}
	_ = eg.Wait()
	s.diag.Cleanup(snap)

	if w != nil {
		cfg := s.store.GetConfig()
		dirs := watcher.DirectoriesFor(snap, func(doc *workspace.Document) []string {
			d := project.WalkAndFind(s.workspaceRoot, workspace.PathFromURI(doc.Directory), cfg)
			return []string{d.SrcDir, d.AuxDir, d.LogDir, d.PdfDir}
		})
		w.Sync(dirs)
	}

	s.schedulePublish()
}

// schedulePublish debounces diagnostic publication.
func (s *Server) schedulePublish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishTimer != nil {
		s.publishTimer.Stop()
	}
	s.publishTimer = time.AfterFunc(publishDebounce, s.publishDiagnostics)
}

// publishDiagnostics merges every diagnostic source and pushes one batch
// per URI, including empty batches for URIs whose diagnostics were
// cleared.
func (s *Server) publishDiagnostics() {
	if s.conn == nil {
		return
	}
	snap, g := s.snapshotGraph()
	cfg := s.store.GetConfig()
	results := s.diag.Get(snap, g, cfg)

	s.mu.Lock()
	previous := s.lastPublished
	published := map[string]bool{}
	s.lastPublished = published
	s.mu.Unlock()

	ctx := context.Background()
	for u, diags := range results {
		doc, ok := snap.Lookup(u)
		if !ok {
			continue
		}
		out := make([]protocol.Diagnostic, 0, len(diags))
		for _, d := range diags {
			out = append(out, toProtocolDiagnostic(doc, d))
		}
		published[u] = true
		s.notifyDiagnostics(ctx, u, out)
	}
	for u := range previous {
		if !published[u] {
			s.notifyDiagnostics(ctx, u, []protocol.Diagnostic{})
		}
	}
}

func (s *Server) notifyDiagnostics(ctx context.Context, u string, diags []protocol.Diagnostic) {
	params := protocol.PublishDiagnosticsParams{
		URI:         docURI(u),
		Diagnostics: diags,
	}
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.logger.Warn("publish failed", zap.String("uri", u), zap.Error(err))
	}
}

// runChktex lints one client-owned document and stores the result in the
// chktex diagnostic partition. Concurrent requests for the same URI share
// one chktex run.
func (s *Server) runChktex(ctx context.Context, u string) {
	_, _, _ = s.chktexGroup.Do(u, func() (interface{}, error) {
		doc, ok := s.store.Lookup(u)
		if !ok || doc.Owner != workspace.OwnerClient || doc.Tex == nil {
			return nil, nil
		}
		cfg := s.store.GetConfig()
		workDir := project.CurrentDirectory(s.store.Snapshot(), cfg, doc)
		diags, err := external.RunChktex(ctx, doc.Text, workDir, cfg.Chktex.AdditionalArgs, doc.Lines)
		if err != nil {
			s.logger.Debug("chktex unavailable", zap.Error(err))
			return nil, nil
		}
		s.diag.UpdateChktex(u, diags)
		s.schedulePublish()
		return nil, nil
	})
}
