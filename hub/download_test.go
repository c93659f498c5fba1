package hub

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudchase/model-pipeline/tools"
)

type fakeRunner struct {
	name   string
	args   []string
	result tools.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (tools.Result, error) {
	f.name = name
	f.args = args
	return f.result, f.err
}

func TestDownload_ComposesCommand(t *testing.T) {
	fake := &fakeRunner{}
	dl := NewDownloader(fake, log.New(io.Discard))
	dest := filepath.Join(t.TempDir(), "bert")

	err := dl.Download(context.Background(), "google-bert/bert-base-uncased", "main", dest)
	require.NoError(t, err)

	assert.Equal(t, "huggingface-cli", fake.name)
	assert.Equal(t, []string{
		"download", "google-bert/bert-base-uncased",
		"--revision", "main",
		"--local-dir", dest,
	}, fake.args)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDownload_NonZeroExit(t *testing.T) {
	fake := &fakeRunner{result: tools.Result{ExitCode: 2, Stderr: "401 unauthorized"}}
	dl := NewDownloader(fake, log.New(io.Discard))

	err := dl.Download(context.Background(), "bert", "main", t.TempDir())
	require.Error(t, err)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, "bert", dlErr.Model)
	assert.Equal(t, 2, dlErr.ExitCode)
	assert.Equal(t, "401 unauthorized", dlErr.StderrExcerpt)
}

func TestDownload_RunnerError(t *testing.T) {
	boom := errors.New("tool not found")
	fake := &fakeRunner{err: boom}
	dl := NewDownloader(fake, log.New(io.Discard))

	err := dl.Download(context.Background(), "bert", "main", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
