package util

import (
	"net"
	"testing"
)

func TestFindAvailablePortSkipsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort(busy, 20)
	if err != nil {
		t.Fatalf("FindAvailablePort: %v", err)
	}
	if port == busy {
		t.Fatalf("returned busy port %d", busy)
	}
	if port <= busy || port >= busy+20 {
		t.Fatalf("port out of range: %d", port)
	}
}

func TestFindAvailablePortNoAttempts(t *testing.T) {
	if _, err := FindAvailablePort(8501, 0); err == nil {
		t.Fatalf("expected error with zero attempts")
	}
}
