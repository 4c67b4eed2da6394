package http

import (
	"net"
	"strconv"
	"testing"
)

func TestFindFreePort_SkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	_, portStr, _ := net.SplitHostPort(busy.Addr().String())
	start, _ := strconv.Atoi(portStr)

	got := FindFreePort(start, 5)
	if got == start {
		t.Fatalf("FindFreePort returned busy port %d", start)
	}
	if got < start || got >= start+5 {
		t.Errorf("FindFreePort = %d, want within [%d, %d)", got, start, start+5)
	}
}

func TestFindFreePort_FallsBackToStart(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	_, portStr, _ := net.SplitHostPort(busy.Addr().String())
	start, _ := strconv.Atoi(portStr)

	if got := FindFreePort(start, 1); got != start {
		t.Errorf("FindFreePort = %d, want fallback %d", got, start)
	}
}
