package sshx

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemoteScriptPath(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 42)

	t.Run("combines temp dir, base name and timestamp", func(t *testing.T) {
		t.Parallel()
		got := remoteScriptPath("prepare.sh", now)
		assert.Equal(t, fmt.Sprintf("/tmp/prepare.sh-%d", now.UnixNano()), got)
	})

	t.Run("strips local directories from the name", func(t *testing.T) {
		t.Parallel()
		got := remoteScriptPath("scripts/env/prepare.sh", now)
		assert.Equal(t, fmt.Sprintf("/tmp/prepare.sh-%d", now.UnixNano()), got)
	})

	t.Run("distinct times yield distinct paths", func(t *testing.T) {
		t.Parallel()
		a := remoteScriptPath("x.sh", time.Unix(1, 0))
		b := remoteScriptPath("x.sh", time.Unix(1, 1))
		assert.NotEqual(t, a, b)
	})
}

func TestScriptInvocation(t *testing.T) {
	t.Parallel()

	t.Run("plain", func(t *testing.T) {
		t.Parallel()
		got := scriptInvocation("/tmp/s.sh-1", nil, false)
		assert.Equal(t, "bash /tmp/s.sh-1", got)
	})

	t.Run("with args", func(t *testing.T) {
		t.Parallel()
		got := scriptInvocation("/tmp/s.sh-1", []string{"v1.31", "containerd"}, false)
		assert.Equal(t, "bash /tmp/s.sh-1 v1.31 containerd", got)
	})

	t.Run("with sudo", func(t *testing.T) {
		t.Parallel()
		got := scriptInvocation("/tmp/s.sh-1", []string{"--force"}, true)
		assert.Equal(t, "sudo bash /tmp/s.sh-1 --force", got)
	})
}

func TestFailure(t *testing.T) {
	t.Parallel()
	res := Failure("host %s unreachable", "10.0.0.9")
	assert.False(t, res.Success)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, "host 10.0.0.9 unreachable", res.Message)
}

func TestTransportErrorUnwrap(t *testing.T) {
	t.Parallel()
	inner := fmt.Errorf("connection refused")
	err := &TransportError{Op: "dial", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "dial")
}
