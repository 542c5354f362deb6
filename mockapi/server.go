// Package mockapi is an in-memory users API with the same shape as the public one the suite
// is written for. It backs the package tests and the "mock" command.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const listenerTimeout = time.Second * 10

// Server is a running mock API.
type Server struct {
	server   *http.Server
	listener net.Listener
	done     chan error
}

// Start listens on port (0 picks a free port) and returns once the listener is answering.
func Start(port int, handler http.Handler) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	s := &Server{
		server: &http.Server{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodHead && r.URL.Path == "/" {
					w.WriteHeader(200) // used to detect that the listener is active
					return
				}
				handler.ServeHTTP(w, r)
			}),
			ReadHeaderTimeout: time.Second * 10,
		},
		listener: listener,
		done:     make(chan error, 1),
	}
	go func() {
		err := s.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	deadline := time.NewTimer(listenerTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case <-deadline.C:
			_ = s.server.Close()
			return nil, fmt.Errorf("could not detect own listener at %s", s.URL())
		case err := <-s.done:
			return nil, err
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(s.URL())
			if err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == 200 {
					return s, nil
				}
			}
		}
	}
}

// URL is the base URL of the server.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.listener.Addr().(*net.TCPAddr).Port)
}

// Wait blocks until the server stops.
func (s *Server) Wait() error {
	return <-s.done
}

// Shutdown stops the server, waiting for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
