package lspserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"texlab-go/internal/config"
	"texlab-go/internal/external"
	"texlab-go/internal/project"
	"texlab-go/internal/query"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

func (s *Server) handleFormatting(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentFormattingParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}
	doc, ok := s.lookupDocument(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, []protocol.TextEdit{}, nil)
	}
	cfg := s.store.GetConfig()

	var useLatexindent bool
	var ext string
	switch {
	case doc.Language == workspace.LanguageTex:
		useLatexindent = cfg.LatexFormatter == config.LatexFormatterLatexindent
		ext = ".tex"
	case doc.Language == workspace.LanguageBib:
		useLatexindent = cfg.BibtexFormatter == config.BibtexFormatterLatexindent
		ext = ".bib"
	}
	if !useLatexindent {
		return reply(ctx, []protocol.TextEdit{}, nil)
	}

	formatted, err := external.FormatWithLatexindent(ctx, cfg, doc.Text, ext)
	if err != nil || formatted == doc.Text {
		return reply(ctx, []protocol.TextEdit{}, nil)
	}
	edit := protocol.TextEdit{
		Range:   toProtocolRange(doc, syntax.Range{Start: 0, End: len(doc.Text)}),
		NewText: formatted,
	}
	return reply(ctx, []protocol.TextEdit{edit}, nil)
}

// commandArgs is the common argument shape of the texlab.* commands: a
// document plus an optional position.
type commandArgs struct {
	URI      string             `json:"uri"`
	Position *protocol.Position `json:"position,omitempty"`
	NewName  string             `json:"newName,omitempty"`
	Line     int                `json:"line,omitempty"`
}

func (s *Server) handleExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ExecuteCommandParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
	}

	var args commandArgs
	if len(params.Arguments) > 0 {
		raw, err := json.Marshal(params.Arguments[0])
		if err == nil {
			_ = json.Unmarshal(raw, &args)
		}
	}

	switch params.Command {
	case "texlab.build":
		status := s.runBuild(ctx, args.URI, nil)
		return reply(ctx, map[string]interface{}{"status": status.String()}, nil)
	case "texlab.forwardSearch":
		err := s.runForwardSearch(args.URI, args.Line)
		return reply(ctx, nil, err)
	case "texlab.cleanAuxiliary":
		return reply(ctx, nil, s.runClean(ctx, args.URI, external.CleanAuxiliary))
	case "texlab.cleanArtifacts":
		return reply(ctx, nil, s.runClean(ctx, args.URI, external.CleanArtifacts))
	case "texlab.changeEnvironment":
		return reply(ctx, nil, s.changeEnvironment(ctx, args))
	}
	return reply(ctx, nil, jsonrpc2.ErrInvalidParams)
}

// rootFor resolves the build target: the document's first root parent,
// or the document itself when it has none (build commands operate on the
// project root, not the edited file).
func (s *Server) rootFor(u string) (*workspace.Document, bool) {
	doc, ok := s.store.Lookup(u)
	if !ok {
		return nil, false
	}
	snap, g := s.snapshotGraph()
	parents := project.Parents(g, snap, doc)
	if len(parents) > 0 {
		return parents[0], true
	}
	return doc, true
}

func (s *Server) runBuild(ctx context.Context, u string, onLine func(string)) external.BuildStatus {
	root, ok := s.rootFor(u)
	if !ok {
		return external.BuildFailure
	}
	cfg := s.store.GetConfig()
	texPath := workspace.PathFromURI(root.URI)
	workDir := project.CurrentDirectory(s.store.Snapshot(), cfg, root)
	pdfPath := s.pdfPathFor(root, cfg)

	status, err := s.build.Run(ctx, cfg, texPath, pdfPath, workDir, onLine)
	if err != nil {
		s.logger.Warn("build failed to run", zap.Error(err))
	}
	// A finished build may have rewritten the log file; the watcher will
	// reload it, but refresh promptly for editors without file events.
	s.afterMutation()
	return status
}

// pdfPathFor derives the output PDF path from the root document's stem
// and the configured output directory/filename.
func (s *Server) pdfPathFor(root *workspace.Document, cfg *config.Config) string {
	dirs := project.WalkAndFind(s.workspaceRoot, workspace.PathFromURI(root.Directory), cfg)
	name := cfg.Build.OutputFilename
	if name == "" {
		name = workspace.StemOfURI(root.URI) + ".pdf"
	}
	return filepath.Join(dirs.PdfDir, name)
}

func (s *Server) runForwardSearch(u string, line int) error {
	root, ok := s.rootFor(u)
	if !ok {
		return nil
	}
	cfg := s.store.GetConfig()
	texPath := workspace.PathFromURI(u)
	workDir := project.CurrentDirectory(s.store.Snapshot(), cfg, root)
	return external.ForwardSearch(cfg, texPath, s.pdfPathFor(root, cfg), line, workDir)
}

func (s *Server) runClean(ctx context.Context, u string, mode external.CleanMode) error {
	root, ok := s.rootFor(u)
	if !ok {
		return nil
	}
	cfg := s.store.GetConfig()
	dirs := project.WalkAndFind(s.workspaceRoot, workspace.PathFromURI(root.Directory), cfg)
	workDir := project.CurrentDirectory(s.store.Snapshot(), cfg, root)
	return external.Clean(ctx, mode, dirs.AuxDir, workspace.PathFromURI(root.URI), workDir)
}

// changeEnvironment renames the environment pair under the given
// position and asks the client to apply the edit.
func (s *Server) changeEnvironment(ctx context.Context, args commandArgs) error {
	doc, ok := s.store.Lookup(args.URI)
	if !ok || args.Position == nil || strings.TrimSpace(args.NewName) == "" {
		return nil
	}
	proj, snap, _ := s.projectFor(doc)
	edits, found := query.Rename(proj, doc, toOffset(doc, *args.Position), args.NewName, s.store.GetConfig())
	if !found {
		return nil
	}
	params := protocol.ApplyWorkspaceEditParams{Edit: workspaceEditFrom(snap, edits)}
	var result protocol.ApplyWorkspaceEditResponse
	_, err := s.conn.Call(ctx, "workspace/applyEdit", params, &result)
	return err
}
