package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_RegistersSubcommands(t *testing.T) {
	t.Parallel()

	cmd := Root()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "up")
	assert.Contains(t, names, "version")
}

func TestUp_Flags(t *testing.T) {
	t.Parallel()

	cmd := Up()
	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "kubestrap.yaml", flag.DefValue)
	require.NotNil(t, cmd.Flags().Lookup("kubeconfig-out"))
}

func TestRoot_Help(t *testing.T) {
	t.Parallel()

	cmd := Root()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Bootstrap kubeadm clusters over SSH")
}
