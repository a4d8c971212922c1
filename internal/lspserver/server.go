package lspserver

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"texlab-go/internal/components"
	"texlab-go/internal/config"
	"texlab-go/internal/diagnostics"
	"texlab-go/internal/distro"
	"texlab-go/internal/external"
	"texlab-go/internal/graph"
	"texlab-go/internal/project"
	"texlab-go/internal/watcher"
	"texlab-go/internal/workspace"
)

// publishDebounce is the quiescence window rapid consecutive changes are
// coalesced into before one diagnostic publication.
const publishDebounce = 300 * time.Millisecond

// Server owns the workspace state and dispatches LSP traffic. Mutations
// are serialised through mu; read-only requests run concurrently against
// whatever snapshot they observe.
type Server struct {
	logger *zap.Logger
	store  *workspace.Store
	diag   *diagnostics.Manager
	build  *external.Builder
	comp   *components.Database
	dist   distro.Resolver

	conn jsonrpc2.Conn

	mu            sync.Mutex
	workspaceRoot string
	watch         *watcher.Watcher
	lastPublished map[string]bool
	publishTimer  *time.Timer

	graphMu   sync.Mutex
	graphSnap *workspace.Snapshot
	graphVal  *graph.Graph

	// chktexGroup collapses concurrent re-lints of the same URI into one
	// chktex process.
	chktexGroup singleflight.Group

	shuttingDown bool
}

// New assembles a Server around a document store. comp and dist may be
// nil; the engine then runs without the packaged component database or a
// TeX distribution.
func New(logger *zap.Logger, cfg *config.Config, comp *components.Database, dist distro.Resolver) *Server {
	if comp == nil {
		comp = components.Empty()
	}
	if dist == nil {
		dist = distro.NullResolver{}
	}
	return &Server{
		logger:        logger,
		store:         workspace.NewStore(cfg),
		diag:          diagnostics.NewManager(),
		build:         external.NewBuilder(),
		comp:          comp,
		dist:          dist,
		lastPublished: map[string]bool{},
	}
}

// Run serves LSP over the given stdio-like transport until the
// connection closes or exit is received. The returned error is nil on a
// clean shutdown.
func (s *Server) Run(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, jsonrpc2.AsyncHandler(s.handle))
	<-conn.Done()

	s.mu.Lock()
	if s.watch != nil {
		_ = s.watch.Close()
		s.watch = nil
	}
	clean := s.shuttingDown
	s.mu.Unlock()

	if err := conn.Err(); err != nil && !clean {
		return err
	}
	return nil
}

// handle is the hand-rolled request dispatch: one switch over the method
// name, unmarshalling params and replying per branch. Read-only request
// paths are infallible at the boundary — internal misses reply with
// empty results, never protocol errors.
func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Debug("lsp request", zap.String("method", req.Method()))

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		s.handleInitialized(ctx)
		return reply(ctx, nil, nil)
	case "shutdown":
		s.mu.Lock()
		s.shuttingDown = true
		s.mu.Unlock()
		return reply(ctx, nil, nil)
	case "exit":
		err := reply(ctx, nil, nil)
		_ = s.conn.Close()
		return err

	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, reply, req)
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(ctx, reply, req)

	case "textDocument/completion":
		return s.handleCompletion(ctx, reply, req)
	case "completionItem/resolve":
		return s.handleCompletionResolve(ctx, reply, req)
	case "textDocument/hover":
		return s.handleHover(ctx, reply, req)
	case "textDocument/definition":
		return s.handleDefinition(ctx, reply, req)
	case "textDocument/references":
		return s.handleReferences(ctx, reply, req)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(ctx, reply, req)
	case "workspace/symbol":
		return s.handleWorkspaceSymbol(ctx, reply, req)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(ctx, reply, req)
	case "textDocument/documentLink":
		return s.handleDocumentLink(ctx, reply, req)
	case "textDocument/documentHighlight":
		return s.handleDocumentHighlight(ctx, reply, req)
	case "textDocument/semanticTokens/range":
		return s.handleSemanticTokensRange(ctx, reply, req)
	case "textDocument/prepareRename":
		return s.handlePrepareRename(ctx, reply, req)
	case "textDocument/rename":
		return s.handleRename(ctx, reply, req)
	case "textDocument/formatting":
		return s.handleFormatting(ctx, reply, req)
	case "textDocument/inlayHint":
		return s.handleInlayHint(ctx, reply, req)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(ctx, reply, req)

	case "$/cancelRequest", "$/setTrace":
		return reply(ctx, nil, nil)
	}
	return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
}

func unmarshalParams(req jsonrpc2.Request, v interface{}) error {
	return json.Unmarshal(req.Params(), v)
}

// snapshotGraph returns the current snapshot together with its resolved
// dependency graph, rebuilding the graph only when the snapshot pointer
// changed since the last call.
func (s *Server) snapshotGraph() (*workspace.Snapshot, *graph.Graph) {
	snap := s.store.Snapshot()
	s.graphMu.Lock()
	defer s.graphMu.Unlock()
	if s.graphSnap == snap && s.graphVal != nil {
		return snap, s.graphVal
	}
	cfg := s.store.GetConfig()
	currentDir := func(doc *workspace.Document) string {
		return project.CurrentDirectory(snap, cfg, doc)
	}
	g := graph.Build(snap, currentDir, s.comp, s.dist, nil)
	s.graphSnap = snap
	s.graphVal = g
	return snap, g
}

// projectFor resolves the project a query against doc is evaluated in.
func (s *Server) projectFor(doc *workspace.Document) (*project.Project, *workspace.Snapshot, *graph.Graph) {
	snap, g := s.snapshotGraph()
	return project.ForDocument(g, snap, doc), snap, g
}

// lookupDocument finds the request's document; a miss yields (nil, false)
// and the caller replies with an empty result.
func (s *Server) lookupDocument(u string) (*workspace.Document, bool) {
	return s.store.Lookup(u)
}
