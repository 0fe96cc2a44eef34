// Package ipc provides the local socket channel CLI sub-commands use to
// talk to a running clipstash daemon.
//
// The channel carries newline-delimited JSON messages (internal/message)
// over a unix domain socket. The daemon listens; sub-commands dial, send one
// request, and read one response.
package ipc

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux / macOS: $TMPDIR/clipstash.sock  (override with $CLIPSTASH_SOCKET)
//   - Windows:       \\.\pipe\clipstash      (named pipe, not yet implemented)
func SocketPath() string {
	if s := os.Getenv("CLIPSTASH_SOCKET"); s != "" {
		return s
	}
	if runtime.GOOS == "windows" {
		return `\\.\pipe\clipstash`
	}
	return filepath.Join(os.TempDir(), "clipstash.sock")
}

// IsRunning reports whether a clipstash daemon appears to be listening on
// the IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Dial connects to the daemon's socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}

// Listen creates and returns a net.Listener on the IPC socket path,
// removing any stale socket file from a previous (crashed) run first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return net.Listen("unix", path)
}
