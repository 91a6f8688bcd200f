package main

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ListenerErrorIsReturned(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	stopped := false
	server := &http.Server{Addr: taken.Addr().String(), Handler: http.NotFoundHandler()}

	err = serve(server, make(chan os.Signal), func() { stopped = true })

	assert.ErrorContains(t, err, "server error")
	assert.True(t, stopped)
}

func TestServe_StopsOnSignal(t *testing.T) {
	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM
	stopped := false
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	err := serve(server, stop, func() { stopped = true })

	assert.NoError(t, err)
	assert.True(t, stopped)
}
