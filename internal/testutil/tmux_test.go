package testutil

import (
	"strings"
	"testing"
)

func TestStartTmuxServerLifecycle(t *testing.T) {
	srv := StartTmuxServer(t)
	srv.NewSession(t, "extra")
	srv.NewWindow(t, "extra", "logs")

	out, err := Command(srv.Socket, "list-windows", "-a", "-F", "#{session_name}:#{window_name}").Output()
	if err != nil {
		t.Skipf("skipping: list-windows failed: %v", err)
	}
	if !strings.Contains(string(out), "extra:logs") {
		t.Fatalf("expected extra:logs window, got %q", out)
	}
}
