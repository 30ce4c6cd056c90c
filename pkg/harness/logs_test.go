package harness

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestInjectLogMsgBuildsLoops(t *testing.T) {
	runner := &fakeRunner{}
	cl := newTestCluster(t, runner, func(w http.ResponseWriter, r *http.Request) {})

	err := cl.InjectLogMsg(context.Background(), []string{"localhost"}, "run start",
		[]string{"/var/log/glusterd2"}, []string{"/var/log/messages"})
	if err != nil {
		t.Fatalf("inject: %v", err)
	}

	cmds := runner.commands()
	if len(cmds) != 1 {
		t.Fatalf("commands = %v", cmds)
	}
	cmd := cmds[0]
	if !strings.Contains(cmd, "find ${dir} -type f -name '*.log'") {
		t.Errorf("cmd %q should walk *.log files", cmd)
	}
	if !strings.Contains(cmd, `echo "run start"`) {
		t.Errorf("cmd %q should append the message", cmd)
	}
	if !strings.Contains(cmd, "/var/log/messages") {
		t.Errorf("cmd %q should cover explicit files", cmd)
	}
}

func TestInjectLogMsgNothingToDo(t *testing.T) {
	runner := &fakeRunner{}
	cl := newTestCluster(t, runner, func(w http.ResponseWriter, r *http.Request) {})

	if err := cl.InjectLogMsg(context.Background(), []string{"localhost"}, "msg", nil, nil); err != nil {
		t.Fatalf("inject with no targets: %v", err)
	}
	if len(runner.commands()) != 0 {
		t.Fatal("no command should run without dirs or files")
	}
}

func TestMarkGlusterLogs(t *testing.T) {
	runner := &fakeRunner{}
	cl := newTestCluster(t, runner, func(w http.ResponseWriter, r *http.Request) {})

	if err := cl.MarkGlusterLogs(context.Background(), "test start", true); err != nil {
		t.Fatalf("mark logs: %v", err)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	hosts := map[string]bool{}
	for _, c := range runner.calls {
		hosts[c.Host] = true
	}
	for _, want := range []string{"localhost", "127.0.0.1", "client1"} {
		if !hosts[want] {
			t.Errorf("no log mark on %s", want)
		}
	}
}
