package status

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"dxnode/node"
	"dxnode/peerdir"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes a node's status report over HTTP: plain text at "/" for a
// human watching with curl, JSON at "/status.json" for a monitoring agent.
type Server struct {
	handle  *node.NodeHandle
	tracker *Tracker
	dir     *peerdir.Directory
	http    *http.Server
}

// NewServer constructs a status server bound to addr. dir may be nil.
func NewServer(addr string, handle *node.NodeHandle, tracker *Tracker, dir *peerdir.Directory) *Server {
	s := &Server{handle: handle, tracker: tracker, dir: dir}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleText)
	mux.HandleFunc("/status.json", s.handleJSON)
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	report, err := BuildReport(s.handle, s.tracker, s.dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(report.HumanText()))
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	report, err := BuildReport(s.handle, s.tracker, s.dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := jsonAPI.NewEncoder(w).Encode(report); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListenAndServe blocks serving status requests until the server is shut
// down or a listener error occurs.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
