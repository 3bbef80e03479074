package session

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestDetect_UsesExistingEnv(t *testing.T) {
	restore := stubDetectFns(
		loginSession{Display: ":99", XAuthority: "/tmp/should-not-be-used"},
		func(string) string { return ":88" },
	)
	defer restore()

	env, err := Detect([]string{
		"HOME=" + t.TempDir(),
		"DISPLAY=:7",
		"XAUTHORITY=/tmp/xauth-existing",
		"XDG_SESSION_TYPE=x11",
	}, ":1")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if env.Display != ":7" || env.Source != "environment" {
		t.Fatalf("Display = %q (%s), want :7 from environment", env.Display, env.Source)
	}
	if env.XAuthority != "/tmp/xauth-existing" {
		t.Fatalf("XAuthority = %q, want %q", env.XAuthority, "/tmp/xauth-existing")
	}
	if env.Wayland() {
		t.Fatal("x11 session reported as wayland")
	}
}

func TestDetect_UsesConfigAndFallsBackToHomeXAuthority(t *testing.T) {
	restore := stubDetectFns(
		loginSession{},
		func(string) string { return "" },
	)
	defer restore()

	home := t.TempDir()
	xauth := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(xauth, []byte("cookie"), 0600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}

	env, err := Detect([]string{"HOME=" + home}, ":1")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if env.Display != ":1" || env.Source != "config" {
		t.Fatalf("Display = %q (%s), want :1 from config", env.Display, env.Source)
	}
	if env.XAuthority != xauth {
		t.Fatalf("XAuthority = %q, want %q", env.XAuthority, xauth)
	}
}

func TestDetect_UsesLoginSession(t *testing.T) {
	restore := stubDetectFns(
		loginSession{Display: ":5", XAuthority: "/tmp/xauth-detected", Type: "x11"},
		func(string) string { return ":9" },
	)
	defer restore()

	env, err := Detect([]string{"HOME=" + t.TempDir(), "XDG_SESSION_TYPE=Wayland"}, "")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if env.Display != ":5" || env.Source != "loginctl" {
		t.Fatalf("Display = %q (%s), want :5 from loginctl", env.Display, env.Source)
	}
	if env.XAuthority != "/tmp/xauth-detected" {
		t.Fatalf("XAuthority = %q", env.XAuthority)
	}
	if !env.Wayland() {
		t.Fatal("expected wayland session")
	}
}

func TestDetect_TakesSessionTypeFromLogind(t *testing.T) {
	restore := stubDetectFns(
		loginSession{Display: ":0", Type: "Wayland"},
		func(string) string { return "" },
	)
	defer restore()

	env, err := Detect([]string{"HOME=" + t.TempDir(), "DISPLAY=:0"}, "")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if env.Source != "environment" || !env.Wayland() {
		t.Fatalf("env = %+v, want wayland type with environment display", env)
	}
}

func TestDetect_FallsBackToSocket(t *testing.T) {
	restore := stubDetectFns(
		loginSession{},
		func(string) string { return ":3" },
	)
	defer restore()

	env, err := Detect([]string{"HOME=" + t.TempDir()}, "")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if env.Display != ":3" || env.Source != "socket" {
		t.Fatalf("Display = %q (%s), want :3 from socket", env.Display, env.Source)
	}
}

func TestDetect_ReturnsErrNoDisplay(t *testing.T) {
	restore := stubDetectFns(
		loginSession{},
		func(string) string { return "" },
	)
	defer restore()

	_, err := Detect([]string{"HOME=" + t.TempDir()}, "")
	if !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("err = %v, want ErrNoDisplay", err)
	}
}

func TestDetectDisplayFromSockets(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"X0", "X2", "not-a-display"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if got := highestDisplaySocket(dir); got != ":2" {
		t.Fatalf("highestDisplaySocket = %q, want %q", got, ":2")
	}
}

func TestParseLoginctlSessions(t *testing.T) {
	out := strings.Join([]string{
		"1 1000 george seat0",
		"2 1001 alice seat0",
		"3 1000 george seat1",
		"",
	}, "\n")
	got := parseLoginctlSessions(out, "1000")
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("parseLoginctlSessions = %v, want [1 3]", got)
	}
}

func TestFindLoginSession_ReadsLeaderEnviron(t *testing.T) {
	origRun, origRead := commandOutputFn, readFileFn
	defer func() { commandOutputFn, readFileFn = origRun, origRead }()

	uid := os.Getuid()
	commandOutputFn = func(name string, args ...string) (string, error) {
		switch {
		case len(args) > 0 && args[0] == "list-sessions":
			return "7 " + strconv.Itoa(uid) + " user seat0\n", nil
		case len(args) > 3 && args[3] == "Display":
			return ":0\n", nil
		case len(args) > 3 && args[3] == "Leader":
			return "1234\n", nil
		case len(args) > 3 && args[3] == "Type":
			return "wayland\n", nil
		}
		return "", errors.New("unexpected command")
	}
	readFileFn = func(path string) ([]byte, error) {
		if path != "/proc/1234/environ" {
			return nil, os.ErrNotExist
		}
		return []byte("DISPLAY=:1\x00XAUTHORITY=/run/user/1000/xauth\x00"), nil
	}

	ls, ok := findLoginSession()
	if !ok {
		t.Fatal("expected a login session")
	}
	if ls.Display != ":1" || ls.XAuthority != "/run/user/1000/xauth" || ls.Type != "wayland" {
		t.Fatalf("findLoginSession = %+v", ls)
	}
}

func stubDetectFns(ls loginSession, detectSocket func(string) string) func() {
	origSession, origSocket := findLoginSessionFn, socketDisplayFn
	findLoginSessionFn = func() (loginSession, bool) { return ls, ls != loginSession{} }
	socketDisplayFn = detectSocket
	return func() {
		findLoginSessionFn, socketDisplayFn = origSession, origSocket
	}
}
