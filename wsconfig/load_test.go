package wsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  // global defaults
  "mode": "server",
  "port": 9443,
  "filter": {
    "ignore": ["*.tmp"],
    "protect": ["*.log"],
  },
  "workspaces": [
    {
      "name": "main",
      "remoteName": "main",
      "role": "SERVER",
      "path": "/srv/ws",
      /* per-workspace secret */
      "secret": {"type": "string", "value": "hunter2"},
      "filter": {"ignore": ["*.bak"]},
    },
    {
      "name": "isolated",
      "remoteName": "isolated",
      "role": "SERVER",
      "path": "/srv/iso",
      "filter": {"override": true, "ignore": ["*.swp"]},
    },
  ],
}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "janus.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTolerantJSON(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "server", doc.Mode)
	assert.Equal(t, 9443, doc.Port)
	require.Len(t, doc.Workspaces, 2)
	assert.Equal(t, "main", doc.Workspaces[0].Name)
}

func TestResolveMergesFilterByDefault(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	doc, err := Load(path)
	require.NoError(t, err)

	workspaces, err := doc.Resolve()
	require.NoError(t, err)
	require.Len(t, workspaces, 2)

	main := workspaces[0]
	assert.ElementsMatch(t, []string{"*.tmp", "*.bak"}, main.Ignore)
	assert.ElementsMatch(t, []string{"*.log"}, main.Protect)
	assert.Equal(t, []byte("hunter2"), main.AESKey)
}

func TestResolveOverrideReplacesFilter(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	doc, err := Load(path)
	require.NoError(t, err)

	workspaces, err := doc.Resolve()
	require.NoError(t, err)

	iso := workspaces[1]
	assert.ElementsMatch(t, []string{"*.swp"}, iso.Ignore)
	assert.Empty(t, iso.Protect)
}

func TestStripCommentsIgnoresSlashesInsideStrings(t *testing.T) {
	raw := `{"path": "http://example.com", "n": 1,}`
	cleaned := stripCommentsAndTrailingCommas([]byte(raw))
	assert.Contains(t, string(cleaned), "http://example.com")
	assert.NotContains(t, string(cleaned), ",}")
}
