package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Kind selects how a probe target is queried.
type Kind int

const (
	KindFile    Kind = iota // read a file, usually under /sys or /proc
	KindSysctl              // sysctl <key>
	KindService             // systemctl is-enabled <unit>
	KindSetting             // gsettings get <schema> <key>
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindSysctl:
		return "sysctl"
	case KindService:
		return "service"
	case KindSetting:
		return "setting"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Runner queries one OS configuration surface. A query that ran to completion
// reports its exit code with a nil error, even when the code is non-zero;
// err is set only when the query could not run or finish (missing binary,
// unreadable file, deadline exceeded).
type Runner interface {
	Run(ctx context.Context, kind Kind, target string) (output string, exitCode int, err error)
}

// ExecRunner runs probes against the local host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, kind Kind, target string) (string, int, error) {
	switch kind {
	case KindFile:
		return readFile(ctx, target)
	case KindSysctl:
		return runCmd(ctx, "sysctl", target)
	case KindService:
		return runCmd(ctx, "systemctl", "is-enabled", target)
	case KindSetting:
		fields := strings.Fields(target)
		if len(fields) != 2 {
			return "", -1, fmt.Errorf("setting target %q: want \"<schema> <key>\"", target)
		}
		return runCmd(ctx, "gsettings", "get", fields[0], fields[1])
	default:
		return "", -1, fmt.Errorf("unsupported probe kind %v", kind)
	}
}

func runCmd(ctx context.Context, name string, args ...string) (string, int, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() != nil {
		return "", -1, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode(), nil
	}
	if err != nil {
		return "", -1, err
	}
	return string(out), 0, nil
}

// readFile honours ctx so a hung sysfs read cannot stall a poll.
func readFile(ctx context.Context, path string) (string, int, error) {
	type result struct {
		b   []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := os.ReadFile(path)
		ch <- result{b, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			return "", -1, r.err
		}
		return string(r.b), 0, nil
	case <-ctx.Done():
		return "", -1, ctx.Err()
	}
}
