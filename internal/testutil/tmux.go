// Package testutil starts throwaway tmux servers for integration tests.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

// Server is a tmux server bound to a private socket. It is killed when the
// test that started it finishes.
type Server struct {
	Socket string
	LogDir string
}

// RequireTmux aborts the calling test when tmux is not present on PATH.
func RequireTmux(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("tmux")
	if err != nil {
		t.Skip("skipping: tmux binary not available")
	}
	return path
}

// StartTmuxServer boots a server with a single detached session named
// "popup-select-test". TMUX_TMPDIR is pointed at the socket directory for
// the duration of the test.
func StartTmuxServer(t *testing.T) *Server {
	t.Helper()
	RequireTmux(t)
	baseDir, err := os.MkdirTemp("/tmp", "popup-select-*")
	if err != nil {
		t.Fatalf("failed to create tmux temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(baseDir) })

	srv := &Server{Socket: filepath.Join(baseDir, "tmux-test.sock"), LogDir: baseDir}
	cmd := Command(srv.Socket, "-f", "/dev/null", "-vv", "new-session", "-d", "-s", "popup-select-test", "sleep", "600")
	cmd.Dir = baseDir
	if err := cmd.Run(); err != nil {
		t.Skipf("skipping: failed to start tmux server: %v", err)
	}
	t.Setenv("TMUX_TMPDIR", baseDir)
	t.Setenv("TMUX_PANE", "")
	t.Cleanup(func() {
		srv.kill(t)
		srv.assertNoCrash(t)
	})
	return srv
}

// NewSession creates a detached session, skipping the test if tmux refuses.
func (s *Server) NewSession(t *testing.T, name string) {
	t.Helper()
	s.run(t, "new-session", "-d", "-s", name, "sleep", "600")
}

// NewWindow adds a window to session.
func (s *Server) NewWindow(t *testing.T, session, name string) {
	t.Helper()
	s.run(t, "new-window", "-d", "-t", session, "-n", name, "sleep", "600")
}

func (s *Server) run(t *testing.T, args ...string) {
	t.Helper()
	if out, err := Command(s.Socket, args...).CombinedOutput(); err != nil {
		t.Skipf("skipping: tmux %s failed: %v (%s)", args[0], err, strings.TrimSpace(string(out)))
	}
}

func (s *Server) kill(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := killTmuxServerControl(ctx, s.Socket); err != nil {
		t.Logf("control-mode kill failed for socket %s: %v; falling back to tmux kill-server", s.Socket, err)
		_ = Command(s.Socket, "kill-server").Run()
	}
}

// assertNoCrash scans the server's verbose logs for an unexpected exit.
func (s *Server) assertNoCrash(t *testing.T) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(s.LogDir, "tmux-server-*.log"))
	if err != nil {
		t.Errorf("failed to glob tmux logs: %v", err)
		return
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("failed to read tmux server log %s: %v", path, err)
			continue
		}
		if bytes.Contains(content, []byte("server exited unexpectedly")) {
			t.Errorf("tmux server reported unexpected exit; see %s", path)
		}
	}
}

// Command builds a tmux invocation against socket with a clean TMUX
// environment.
func Command(socket string, extra ...string) *exec.Cmd {
	trimmed := strings.TrimSpace(socket)
	args := make([]string, 0, len(extra)+2)
	if trimmed != "" {
		args = append(args, "-S", trimmed)
	}
	args = append(args, extra...)
	cmd := exec.Command("tmux", args...)
	env := make([]string, 0, len(os.Environ())+2)
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, "TMUX=") {
			continue
		}
		env = append(env, entry)
	}
	env = append(env, "TMUX=")
	if trimmed != "" {
		env = append(env, "TMUX_TMPDIR="+filepath.Dir(trimmed))
	}
	cmd.Env = env
	return cmd
}

func killTmuxServerControl(ctx context.Context, socket string) error {
	if strings.TrimSpace(socket) == "" {
		return errors.New("empty tmux socket path")
	}
	client, err := gotmux.NewTmuxWithOptions(socket, gotmux.WithContext(ctx))
	if err != nil {
		return err
	}
	defer client.Close()
	return client.KillServer()
}
