// Package server exposes one graph store over a JSON HTTP API.
//
// Routes:
//
//	GET    /healthz
//	GET    /graph                 snapshot
//	DELETE /graph                 clear
//	PUT    /graph/name            {"name": "..."}
//	GET    /graph/dot             Graphviz DOT with pinned positions
//	POST   /workflow/import       serialized workflow
//	GET    /workflow/export
//	POST   /layout?direction=LR|TB
//	POST   /nodes                 graph node; id optional
//	PATCH  /nodes/{id}            payload patch
//	DELETE /nodes/{id}
//	PUT    /nodes/{id}/credentials/{kind}   {"id": "...", "name": "..."}
//	POST   /edges
//	DELETE /edges/{id}
//	PUT    /selection             {"id": "..."}
//	GET    /credentials/{kind}?node=<id>
//
// Validation errors are answered with 400 and {"code", "message"}. Every
// other graph operation is total: naming a missing node or edge is a no-op.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowcanvas/pkg/buildinfo"
	"github.com/matzehuels/flowcanvas/pkg/credentials"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/render/nodelink"
	"github.com/matzehuels/flowcanvas/pkg/store"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// maxBody bounds request bodies.
const maxBody = 8 << 20

// Server serves one [store.Store].
type Server struct {
	store  *store.Store
	creds  *credentials.Latest
	logger *log.Logger
	router chi.Router
}

// New creates a Server. lookup may be nil, in which case the credential
// route answers 501.
func New(st *store.Store, lookup credentials.Lookup, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{store: st, logger: logger}
	if lookup != nil {
		s.creds = credentials.NewLatest(lookup)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)

	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.getGraph)
		r.Delete("/", s.clearGraph)
		r.Put("/name", s.setName)
		r.Get("/dot", s.getDOT)
	})

	r.Post("/workflow/import", s.importWorkflow)
	r.Get("/workflow/export", s.exportWorkflow)
	r.Post("/layout", s.runLayout)

	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.addNode)
		r.Patch("/{id}", s.updateNode)
		r.Delete("/{id}", s.removeNode)
		r.Put("/{id}/credentials/{kind}", s.applyCredential)
	})

	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.addEdge)
		r.Delete("/{id}", s.removeEdge)
	})

	r.Put("/selection", s.setSelection)
	r.Get("/credentials/{kind}", s.listCredentials)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// =============================================================================
// Responses
// =============================================================================

// codeSuperseded answers a credential fetch overtaken by a newer one.
const codeSuperseded errors.Code = "SUPERSEDED"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(err, code)
	var rl *errors.RateLimitedError
	switch {
	case stderrors.Is(err, credentials.ErrStale):
		code = codeSuperseded
	case stderrors.As(err, &rl):
		code = rl.Code()
	case code == "":
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, apiError{Code: string(code), Message: errors.UserMessage(err)})
}

func statusFor(err error, code errors.Code) int {
	var rl *errors.RateLimitedError
	switch {
	case stderrors.Is(err, credentials.ErrStale):
		return http.StatusConflict
	case stderrors.As(err, &rl):
		return http.StatusTooManyRequests
	}
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidWorkflow, errors.ErrCodeInvalidDirection,
		errors.ErrCodeInvalidNodeID, errors.ErrCodeMalformedInput:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeUnauthorized, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedInput, err, "decode request body")
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) clearGraph(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setName(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.store.SetName(body.Name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(nodelink.ToDOT(s.store.Snapshot(), nodelink.Options{Pinned: true, Detailed: true})))
}

func (s *Server) importWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := workflow.ReadJSON(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.ImportWorkflow(r.Context(), wf); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) exportWorkflow(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := workflow.WriteJSON(s.store.ExportWorkflow(), w); err != nil {
		s.logger.Warn("write export", "err", err)
	}
}

func (s *Server) runLayout(w http.ResponseWriter, r *http.Request) {
	dir, err := layout.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.store.RunLayout(r.Context(), dir)
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

type idResponse struct {
	ID string `json:"id"`
}

type removedResponse struct {
	Removed bool `json:"removed"`
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var n graph.Node
	if err := decodeBody(w, r, &n); err != nil {
		s.writeError(w, err)
		return
	}
	if n.ID != "" {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusCreated, idResponse{ID: s.store.AddNode(n)})
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	var patch store.PayloadPatch
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	s.store.UpdateNodePayload(chi.URLParam(r, "id"), patch)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	removed := s.store.RemoveNode(chi.URLParam(r, "id"))
	s.writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

func (s *Server) applyCredential(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if err := errors.ValidateCredentialKind(kind); err != nil {
		s.writeError(w, err)
		return
	}
	var ref workflow.CredentialRef
	if err := decodeBody(w, r, &ref); err != nil {
		s.writeError(w, err)
		return
	}
	s.store.ApplyCredential(chi.URLParam(r, "id"), kind, ref)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	var e graph.Edge
	if err := decodeBody(w, r, &e); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, idResponse{ID: s.store.ApplyEdgeAdd(e)})
}

func (s *Server) removeEdge(w http.ResponseWriter, r *http.Request) {
	removed := s.store.RemoveEdge(chi.URLParam(r, "id"))
	s.writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

func (s *Server) setSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.store.SetSelection(body.ID)
	s.writeJSON(w, http.StatusOK, map[string]string{"selectedId": s.store.SelectedID()})
}

func (s *Server) listCredentials(w http.ResponseWriter, r *http.Request) {
	if s.creds == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "credential lookup is not configured"))
		return
	}
	nodeID := r.URL.Query().Get("node")
	if nodeID == "" {
		nodeID = s.store.SelectedID()
	}
	creds, err := s.creds.Fetch(r.Context(), nodeID, chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, creds)
}
