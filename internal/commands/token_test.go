package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt:\n  secret: cmd-secret\n  issuer: cmd-test\n"), 0o600))

	root := &cobra.Command{Use: "billing", SilenceUsage: true}
	root.PersistentFlags().String(ConfigFlag, "", "")
	root.AddCommand(TokenCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--config", path, "--agency", "agency-1", "--actor", "ops"})
	require.NoError(t, root.Execute())

	claims, err := util.ParseToken("cmd-secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "agency-1", claims.AgencyID)
	assert.Equal(t, "ops", claims.ActorID)
	assert.Equal(t, "cmd-test", claims.Issuer)
}
