package testutil

import (
	"context"
	"net/http"
	"sync/atomic"
)

// FakeHTTPServer satisfies the server package's listener interface without
// opening a socket. ListenAndServe returns ListenErr immediately.
type FakeHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error

	listens   atomic.Int32
	shutdowns atomic.Int32
}

func (s *FakeHTTPServer) ListenAndServe() error {
	s.listens.Add(1)
	return s.ListenErr
}

func (s *FakeHTTPServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	return s.ShutdownErr
}

func (s *FakeHTTPServer) Addr() string {
	if s.AddrVal == "" {
		return ":0"
	}
	return s.AddrVal
}

func (s *FakeHTTPServer) Handler() http.Handler {
	return s.HandlerVal
}

// Listens reports how many times ListenAndServe was called.
func (s *FakeHTTPServer) Listens() int { return int(s.listens.Load()) }

// Shutdowns reports how many times Shutdown was called.
func (s *FakeHTTPServer) Shutdowns() int { return int(s.shutdowns.Load()) }
