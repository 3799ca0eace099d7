package runner

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on coreutils")
	}

	r := New()
	res, err := r.Run(t.Context(), Command{Name: "echo", Args: []string{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunEmptyName(t *testing.T) {
	r := New()
	_, err := r.Run(t.Context(), Command{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestRunMissingBinary(t *testing.T) {
	r := New()
	res, err := r.Run(t.Context(), Command{Name: "definitely-not-a-real-binary-xyz"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeExternalCommand, errors.CodeOf(err))
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on coreutils")
	}

	r := New()
	res, err := r.Run(t.Context(), Command{Name: "false"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeExternalCommand, errors.CodeOf(err))
	assert.Equal(t, 1, res.ExitCode)
}

func TestRunContextTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on coreutils")
	}

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	r := New()
	_, err := r.Run(ctx, Command{Name: "sleep", Args: []string{"5"}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
}

func TestLookPath(t *testing.T) {
	r := New()
	require.NoError(t, r.LookPath("go"))
	require.Error(t, r.LookPath("definitely-not-a-real-binary-xyz"))
}

func TestFakeScripting(t *testing.T) {
	f := NewFake().Script("terraform output", FakeResponse{
		Result: Result{Stdout: `{"cluster_name":{"value":"dev"}}`},
	})

	res, err := f.Run(t.Context(), Command{Name: "terraform", Args: []string{"output", "-json"}})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "cluster_name")

	// unmatched commands succeed with empty output
	res, err = f.Run(t.Context(), Command{Name: "aws", Args: []string{"sts", "get-caller-identity"}})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)

	require.Equal(t, []string{
		"terraform output -json",
		"aws sts get-caller-identity",
	}, f.CallLines())
}

func TestFakeMissingTools(t *testing.T) {
	f := NewFake()
	f.MissingTools = []string{"kubeseal"}

	require.NoError(t, f.LookPath("terraform"))
	require.Error(t, f.LookPath("kubeseal"))
}
