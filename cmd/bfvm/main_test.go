package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// When set, the test binary behaves as bfvm with the given
// unit-separated arguments.
const argsEnv = "BFVM_TEST_ARGS"

func TestMain(m *testing.M) {
	if args, ok := os.LookupEnv(argsEnv); ok {
		os.Args = append([]string{"bfvm"}, strings.Split(args, "\x1f")...)
		main()
		return
	}
	os.Exit(m.Run())
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	cmd := exec.Command(os.Args[0])
	cmd.Env = append(os.Environ(), argsEnv+"="+strings.Join(args, "\x1f"))
	cmd.Dir = t.TempDir()
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		t.Fatalf("running bfvm: %v", err)
	}
	return out.String(), errOut.String(), code
}

func TestDebugTraceReachesStderr(t *testing.T) {
	stdout, stderr, code := runCLI(t, "-d", "-c", "+[-]")
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	for _, want := range []string{"ip=0000", "run halted"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestDebugTraceOnFailure(t *testing.T) {
	_, stderr, code := runCLI(t, "-d", "-m", "4", "-c", ">>>>+")
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	for _, want := range []string{"Error: runtime error", "run aborted"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestQuietWithoutDebug(t *testing.T) {
	stdout, stderr, code := runCLI(t, "-c", "++++++++[>++++++++<-]>+.")
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr)
	}
	if stdout != "A" {
		t.Errorf("stdout = %q, want %q", stdout, "A")
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestMemoryLimitRejected(t *testing.T) {
	_, stderr, code := runCLI(t, "-m", "100000000000", "-c", "+")
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr, "exceeds maximum") {
		t.Errorf("stderr = %q", stderr)
	}
}
