package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/config"
)

// testEnv points every command at stores under a temp directory.
type testEnv struct {
	*cli.Env
	root string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Version:         1,
		HostConfigPath:  filepath.Join(root, "Claude", "claude_desktop_config.json"),
		DataDir:         filepath.Join(root, "data"),
		BackupDir:       filepath.Join(root, "data", "backups"),
		ServersDir:      filepath.Join(root, "mcp-servers"),
		BackupRetention: config.DefaultBackupRetention,
	}
	env := cli.NewEnv(cfg)
	env.Catalog = catalog.New(
		catalog.Entry{
			Name:   "memory",
			Kind:   catalog.KindRemotePackage,
			Launch: catalog.LaunchSpec{Command: "npx", Args: []string{"-y", "@example/memory"}},
		},
		catalog.Entry{
			Name: "web-search",
			Kind: catalog.KindRemotePackage,
			Launch: catalog.LaunchSpec{
				Command: "npx",
				Args:    []string{"-y", "@example/brave"},
				Env:     map[string]string{"BRAVE_API_KEY": "YOUR_BRAVE_API_KEY"},
			},
		},
		catalog.Entry{
			Name:   "rag-context",
			Kind:   catalog.KindBundledLocal,
			Launch: catalog.LaunchSpec{Command: "python", Args: []string{"server.py"}, Cwd: filepath.Join(root, "mcp-servers", "rag-context")},
		},
	)

	flags.SetEnv(env, nil)
	t.Cleanup(func() { flags.SetEnv(nil, nil) })
	return &testEnv{Env: env, root: root}
}

func (e *testEnv) writeHostConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(e.Host.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(e.Host.Path(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) readHostConfig(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.Host.Path())
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
