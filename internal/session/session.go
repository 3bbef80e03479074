// Package session locates the X display the daemon should attach to.
package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const x11SocketDir = "/tmp/.X11-unix"

var (
	commandOutputFn    = commandOutput
	readFileFn         = os.ReadFile
	readDirFn          = os.ReadDir
	findLoginSessionFn = findLoginSession
	socketDisplayFn    = highestDisplaySocket
)

// ErrNoDisplay is returned when no X display can be found.
var ErrNoDisplay = errors.New("no X display found; export DISPLAY or set display in the config file")

// Env is the resolved display environment.
type Env struct {
	Display    string
	XAuthority string
	// Type is the session type ("x11", "wayland", "tty"), empty when unknown.
	Type string
	// Source names where Display came from.
	Source string
}

// Wayland reports whether the user session is a Wayland session.
func (e Env) Wayland() bool {
	return e.Type == "wayland"
}

// loginSession is what logind knows about one of the user's sessions.
type loginSession struct {
	Display    string
	XAuthority string
	Type       string
}

// Detect resolves the display from environ, then the configured value, then
// the user's logind session, then the X11 socket directory.
func Detect(environ []string, configured string) (Env, error) {
	get := func(key string) string { return strings.TrimSpace(envLookup(environ, key)) }

	env := Env{
		Display:    get("DISPLAY"),
		XAuthority: get("XAUTHORITY"),
		Type:       strings.ToLower(get("XDG_SESSION_TYPE")),
		Source:     "environment",
	}
	if env.Display == "" {
		if configured = strings.TrimSpace(configured); configured != "" {
			env.Display, env.Source = configured, "config"
		}
	}

	if env.Display == "" || env.XAuthority == "" || env.Type == "" {
		if ls, ok := findLoginSessionFn(); ok {
			if env.Display == "" && ls.Display != "" {
				env.Display, env.Source = ls.Display, "loginctl"
			}
			if env.XAuthority == "" {
				env.XAuthority = ls.XAuthority
			}
			if env.Type == "" {
				env.Type = strings.ToLower(ls.Type)
			}
		}
	}

	if env.Display == "" {
		env.Display, env.Source = socketDisplayFn(x11SocketDir), "socket"
	}
	if env.Display == "" {
		return env, ErrNoDisplay
	}

	if env.XAuthority == "" {
		env.XAuthority = homeXAuthority(get("HOME"))
	}
	return env, nil
}

// Apply detects the display for the current process and exports DISPLAY and
// XAUTHORITY so the X client library picks them up.
func Apply(configured string) (Env, error) {
	env, err := Detect(os.Environ(), configured)
	if err != nil {
		return env, err
	}
	if err := os.Setenv("DISPLAY", env.Display); err != nil {
		return env, fmt.Errorf("export DISPLAY: %w", err)
	}
	if env.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		if err := os.Setenv("XAUTHORITY", env.XAuthority); err != nil {
			return env, fmt.Errorf("export XAUTHORITY: %w", err)
		}
	}
	return env, nil
}

func homeXAuthority(home string) string {
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return ""
	}
	p := filepath.Join(home, ".Xauthority")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func commandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return string(out), err
}

// findLoginSession returns the first graphical session of the current user.
// The session leader's environment is preferred over logind's Display
// property since it also carries XAUTHORITY.
func findLoginSession() (loginSession, bool) {
	out, err := commandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return loginSession{}, false
	}
	for _, id := range parseLoginctlSessions(out, strconv.Itoa(os.Getuid())) {
		display := sessionProperty(id, "Display")
		if display == "" || strings.EqualFold(display, "n/a") {
			continue
		}
		ls := loginSession{Display: display, Type: sessionProperty(id, "Type")}

		if leader := sessionProperty(id, "Leader"); leader != "" && leader != "0" {
			if vars, err := readProcEnviron(leader); err == nil {
				if d := strings.TrimSpace(vars["DISPLAY"]); d != "" {
					ls.Display = d
				}
				ls.XAuthority = strings.TrimSpace(vars["XAUTHORITY"])
			}
		}
		return ls, true
	}
	return loginSession{}, false
}

// parseLoginctlSessions picks the session IDs owned by uid out of
// `loginctl list-sessions --no-legend` output.
func parseLoginctlSessions(output, uid string) []string {
	var ids []string
	for _, line := range strings.Split(output, "\n") {
		if f := strings.Fields(line); len(f) >= 2 && f[1] == uid {
			ids = append(ids, f[0])
		}
	}
	return ids
}

func sessionProperty(id, prop string) string {
	out, err := commandOutputFn("loginctl", "show-session", id, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string)
	for _, kv := range strings.Split(string(data), "\x00") {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = v
		}
	}
	return vars, nil
}

// highestDisplaySocket returns ":N" for the largest X<N> socket in dir.
func highestDisplaySocket(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}
	var nums []int
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Name(), "X")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return ""
	}
	return ":" + strconv.Itoa(slices.Max(nums))
}

func envLookup(environ []string, key string) string {
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}
