package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//recorder is a Runner that records commands and fails those
//whose program is in fail.
type recorder struct {
	cmds []Command
	fail map[string]int
}

func (r *recorder) Run(ctx context.Context, C Command) error {
	r.cmds = append(r.cmds, C)
	if code, ok := r.fail[C.Path]; ok {
		return &CommandError{Command: C.String(), ExitCode: code}
	}
	return nil
}

func commandStep(name, program string) Step {
	return NewStep(name, func(ctx context.Context, ec *ExecContext) error {
		return ec.Run(ctx, ec.Command(program, name+".txt"))
	})
}

func TestPipelineSucceeds(Te *testing.T) {
	r := &recorder{}
	ec := &ExecContext{Dir: Te.TempDir(), Env: []string{"OPENMM_CPU_THREADS=2"}, Runner: r}
	P := New("system", commandStep("solvate", "mmengine"), commandStep("bind-output", "true"))
	var seen []string
	P.Observe(func(from, to State) { seen = append(seen, to.String()) })
	assert.Equal(Te, Pending, P.State().Phase)
	require.NoError(Te, P.Run(context.Background(), ec))
	assert.Equal(Te, Succeeded, P.State().Phase)
	want := []string{"running(0: solvate)", "running(1: bind-output)", "succeeded"}
	if diff := cmp.Diff(want, seen); diff != "" {
		Te.Errorf("transitions (-want +got):\n%s", diff)
	}
	require.Len(Te, r.cmds, 2)
	assert.Equal(Te, []string{"OPENMM_CPU_THREADS=2"}, r.cmds[0].Env)
	assert.Equal(Te, ec.Dir, r.cmds[0].Dir)
	assert.Equal(Te, "mmengine solvate.txt", r.cmds[0].String())
	assert.Equal(Te, []string{"solvate", "bind-output"}, P.Steps())

	assert.ErrorIs(Te, P.Run(context.Background(), ec), ErrAlreadyRun)
}

func TestPipelineFailFast(Te *testing.T) {
	r := &recorder{fail: map[string]int{"pdbfixer": 3}}
	ec := &ExecContext{Dir: Te.TempDir(), Runner: r}
	P := New("receptor",
		commandStep("prepare-input", "true"),
		commandStep("fix-structure", "pdbfixer"),
		commandStep("bind-output", "true"))
	err := P.Run(context.Background(), ec)
	require.Error(Te, err)
	var serr *StepError
	require.True(Te, errors.As(err, &serr))
	assert.Equal(Te, 1, serr.Index)
	assert.Equal(Te, "fix-structure", serr.Step)
	var cerr *CommandError
	require.True(Te, errors.As(err, &cerr))
	assert.Equal(Te, 3, cerr.ExitCode)

	S := P.State()
	assert.Equal(Te, Failed, S.Phase)
	assert.Equal(Te, 1, S.Step)
	assert.True(Te, S.Phase.Terminal())
	assert.Len(Te, r.cmds, 2, "no step runs after a failure")
}

func TestPipelineCancelled(Te *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	P := New("sim",
		NewStep("first", func(ctx context.Context, ec *ExecContext) error { cancel(); return nil }),
		NewStep("second", func(ctx context.Context, ec *ExecContext) error { ran = true; return nil }))
	err := P.Run(ctx, &ExecContext{})
	assert.ErrorIs(Te, err, context.Canceled)
	assert.False(Te, ran)
	assert.Equal(Te, "second", P.State().StepName)
}

func TestExecRunner(Te *testing.T) {
	if runtime.GOOS == "windows" {
		Te.Skip("needs a POSIX shell")
	}
	dir := Te.TempDir()
	script := filepath.Join(dir, "engine.sh")
	require.NoError(Te, os.WriteFile(script, []byte("#!/bin/sh\necho \"$GOMM_TEST_VAR $1\"\nexit $2\n"), 0755))
	var out bytes.Buffer
	C := Command{Path: script, Args: []string{"params.txt", "0"}, Dir: dir, Env: []string{"GOMM_TEST_VAR=activated"}, Stdout: &out}
	require.NoError(Te, ExecRunner{}.Run(context.Background(), C))
	assert.Equal(Te, "activated params.txt", strings.TrimSpace(out.String()))
	_, set := os.LookupEnv("GOMM_TEST_VAR")
	assert.False(Te, set, "the parent environment must not change")

	C.Args = []string{"params.txt", "4"}
	err := ExecRunner{}.Run(context.Background(), C)
	var cerr *CommandError
	require.True(Te, errors.As(err, &cerr))
	assert.Equal(Te, 4, cerr.ExitCode)

	C.Path = filepath.Join(dir, "missing")
	err = ExecRunner{}.Run(context.Background(), C)
	require.True(Te, errors.As(err, &cerr))
	assert.Equal(Te, -1, cerr.ExitCode)
}
