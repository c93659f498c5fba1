package tools

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunner() *ExecRunner {
	return NewExecRunner(log.New(io.Discard))
}

func TestExecRunner_CapturesStreams(t *testing.T) {
	res, err := testRunner().Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	res, err := testRunner().Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "broken", res.StderrExcerpt())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	_, err := testRunner().Run(context.Background(), "definitely-not-a-real-tool-xyz")
	require.Error(t, err)
}

func TestExecRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testRunner().Run(ctx, "sh", "-c", "sleep 10")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStderrExcerpt_TruncatesLongOutput(t *testing.T) {
	res := Result{Stderr: strings.Repeat("x", 10000)}
	excerpt := res.StderrExcerpt()
	assert.True(t, strings.HasPrefix(excerpt, "..."))
	assert.LessOrEqual(t, len(excerpt), 3+2048)
}

func TestCommandString(t *testing.T) {
	s := CommandString("optimum-cli", []string{"export", "onnx", "--model", "bert"})
	assert.Equal(t, "optimum-cli export onnx --model bert", s)
}
