package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/doichev-kostia/performance-aware-programming/sim8086/pkg/decoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinary(t *testing.T, code []byte) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "listing_0041")
	require.NoError(t, os.WriteFile(filename, code, 0o644))
	return filename
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRun(t *testing.T) {
	filename := writeBinary(t, []byte{0x89, 0xd9, 0xc6, 0x07, 0x07, 0x75, 0xfc})

	out, err := execute(t, filename)
	require.NoError(t, err)
	assert.Equal(t, "; "+filename+"\nbits 16\n\nmov cx, bx\nmov [bx], 7\njne -4\n", out)

	out, err = execute(t, "--explicit-width", "--verify", filename)
	require.NoError(t, err)
	assert.Equal(t, "; "+filename+"\nbits 16\n\nmov cx, bx\nmov byte [bx], 7\njne -4\n", out)
}

func TestRunPrintsPartialOutput(t *testing.T) {
	filename := writeBinary(t, []byte{0x89, 0xd9, 0x8b, 0x2e, 0x05})

	out, err := execute(t, filename)
	require.ErrorIs(t, err, decoder.ErrTruncatedInstruction)
	assert.Equal(t, "; "+filename+"\nbits 16\n\nmov cx, bx\n", out)
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "doesn't exist")

	_, err = execute(t)
	assert.Error(t, err)

	_, err = execute(t, "--log-level", "loud", writeBinary(t, nil))
	assert.ErrorContains(t, err, "invalid level")
}
