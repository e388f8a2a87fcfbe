package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewServers_RedirectOnlyWithTLS(t *testing.T) {
	plain := NewServers(ServerConfig{Addr: ":0", Handler: http.NotFoundHandler(), RedirectHTTP: true}, zap.NewNop())
	assert.Nil(t, plain.redirect)

	tls := NewServers(ServerConfig{Addr: ":0", Handler: http.NotFoundHandler(), TLSEnabled: true, RedirectHTTP: true}, zap.NewNop())
	require.NotNil(t, tls.redirect)
	assert.Equal(t, ":80", tls.redirect.Addr)
}

func TestServers_StartReportsListenError(t *testing.T) {
	s := NewServers(ServerConfig{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}, zap.NewNop())

	select {
	case err := <-s.Start():
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listen error not reported")
	}
}

func TestServers_ShutdownIsNotAnError(t *testing.T) {
	s := NewServers(ServerConfig{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}, zap.NewNop())
	errc := s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Shutdown(time.Second)

	select {
	case err := <-errc:
		t.Fatalf("unexpected listener error: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}
