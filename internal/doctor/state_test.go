package doctor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/configstore"
	"github.com/thoreinstein/mcpfed/internal/manifest"
	"github.com/thoreinstein/mcpfed/internal/nameset"
)

type stateFixture struct {
	configPath   string
	manifestPath string
	catalog      *catalog.Catalog
}

func newStateFixture(t *testing.T) *stateFixture {
	t.Helper()
	root := t.TempDir()
	return &stateFixture{
		configPath:   filepath.Join(root, "claude_desktop_config.json"),
		manifestPath: filepath.Join(root, "installation_manifest.json"),
		catalog: catalog.New(
			catalog.Entry{
				Name:   "memory",
				Kind:   catalog.KindRemotePackage,
				Launch: catalog.LaunchSpec{Command: "npx", Args: []string{"-y", "@example/memory"}},
			},
			catalog.Entry{
				Name: "brave-search",
				Kind: catalog.KindRemotePackage,
				Launch: catalog.LaunchSpec{
					Command: "npx",
					Args:    []string{"-y", "@example/brave"},
					Env:     map[string]string{"BRAVE_API_KEY": "YOUR_BRAVE_API_KEY"},
				},
			},
		),
	}
}

func (f *stateFixture) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.configPath, []byte(content), 0o644))
}

func (f *stateFixture) saveRecord(t *testing.T, ours, existing, pending []string) {
	t.Helper()
	rec := manifest.NewRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	rec.InstalledByUs = nameset.New(ours...)
	rec.AlreadyExisted = nameset.New(existing...)
	if len(pending) > 0 {
		rec.Pending = nameset.New(pending...)
	}
	require.NoError(t, manifest.NewStore(f.manifestPath).Save(rec))
}

func (f *stateFixture) load() *State {
	return LoadState(configstore.NewStore(f.configPath), manifest.NewStore(f.manifestPath), f.catalog)
}

func TestHostConfigCheck(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    Severity
	}{
		{"absent", nil, SeverityInfo},
		{"valid", ptr(`{"mcpServers":{"a":{"command":"x"}}}`), SeverityPass},
		{"corrupt", ptr(`{"mcpServers":`), SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStateFixture(t)
			if tt.content != nil {
				f.writeConfig(t, *tt.content)
			}

			result := NewHostConfigCheck(f.load()).Run()
			assert.Equal(t, tt.want, result.Status, result.Message)
			assert.Equal(t, "host-config", result.Name)
		})
	}
}

func TestHostConfigCheck_CorruptSuggestsRestore(t *testing.T) {
	f := newStateFixture(t)
	f.writeConfig(t, `not json`)

	result := NewHostConfigCheck(f.load()).Run()
	assert.Contains(t, result.FixHint, "mcpfed backup restore")
}

func TestManifestCheck(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		f := newStateFixture(t)
		result := NewManifestCheck(f.load()).Run()
		assert.Equal(t, SeverityInfo, result.Status)
	})

	t.Run("valid", func(t *testing.T) {
		f := newStateFixture(t)
		f.saveRecord(t, []string{"memory"}, []string{"brave-search"}, nil)

		result := NewManifestCheck(f.load()).Run()
		assert.Equal(t, SeverityPass, result.Status)
		assert.Equal(t, []string{"memory"}, result.Details["installed_by_us"])
		assert.Equal(t, []string{"brave-search"}, result.Details["already_existed"])
	})

	t.Run("interrupted", func(t *testing.T) {
		f := newStateFixture(t)
		f.saveRecord(t, nil, nil, []string{"memory"})

		result := NewManifestCheck(f.load()).Run()
		assert.Equal(t, SeverityWarning, result.Status)
		assert.Equal(t, []string{"memory"}, result.Details["pending"])
	})

	t.Run("corrupt", func(t *testing.T) {
		f := newStateFixture(t)
		require.NoError(t, os.WriteFile(f.manifestPath, []byte("{"), 0o600))

		result := NewManifestCheck(f.load()).Run()
		assert.Equal(t, SeverityError, result.Status)
		assert.NotEmpty(t, result.FixHint)
	})
}

func TestConsistencyCheck(t *testing.T) {
	installed := `{"mcpServers":{"memory":{"command":"npx","args":["-y","@example/memory"]}}}`

	tests := []struct {
		name     string
		config   string
		ours     []string
		existing []string
		want     Severity
		wantKey  string
	}{
		{
			name:   "agrees",
			config: installed,
			ours:   []string{"memory"},
			want:   SeverityPass,
		},
		{
			name:     "overlap",
			config:   installed,
			ours:     []string{"memory"},
			existing: []string{"memory"},
			want:     SeverityError,
			wantKey:  "overlap",
		},
		{
			name:    "missing",
			config:  `{"mcpServers":{}}`,
			ours:    []string{"memory"},
			want:    SeverityWarning,
			wantKey: "missing",
		},
		{
			name:    "untracked",
			config:  installed,
			want:    SeverityInfo,
			wantKey: "untracked",
		},
		{
			name:    "drifted",
			config:  `{"mcpServers":{"memory":{"command":"node","args":["edited.js"]}}}`,
			ours:    []string{"memory"},
			want:    SeverityInfo,
			wantKey: "drifted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStateFixture(t)
			f.writeConfig(t, tt.config)
			if tt.ours != nil || tt.existing != nil {
				f.saveRecord(t, tt.ours, tt.existing, nil)
			}

			result := NewConsistencyCheck(f.load()).Run()
			assert.Equal(t, tt.want, result.Status, result.Message)
			if tt.wantKey != "" {
				assert.Contains(t, result.Details, tt.wantKey)
			}
		})
	}
}

func TestConsistencyCheck_SkipsUnreadableState(t *testing.T) {
	f := newStateFixture(t)
	f.writeConfig(t, `{`)

	result := NewConsistencyCheck(f.load()).Run()
	assert.Equal(t, SeverityInfo, result.Status)
}

func TestPlaceholderCheck(t *testing.T) {
	t.Run("placeholder present", func(t *testing.T) {
		f := newStateFixture(t)
		f.writeConfig(t, `{"mcpServers":{"brave-search":{"command":"npx","args":[],"env":{"BRAVE_API_KEY":"YOUR_BRAVE_API_KEY"}}}}`)

		result := NewPlaceholderCheck(f.load()).Run()
		assert.Equal(t, SeverityWarning, result.Status)
		servers, ok := result.Details["servers"].(map[string][]string)
		require.True(t, ok)
		assert.Equal(t, []string{"BRAVE_API_KEY"}, servers["brave-search"])
	})

	t.Run("credential filled in", func(t *testing.T) {
		f := newStateFixture(t)
		f.writeConfig(t, `{"mcpServers":{"brave-search":{"command":"npx","args":[],"env":{"BRAVE_API_KEY":"real-key"}}}}`)

		result := NewPlaceholderCheck(f.load()).Run()
		assert.Equal(t, SeverityPass, result.Status)
	})

	t.Run("non-catalog entries ignored", func(t *testing.T) {
		f := newStateFixture(t)
		f.writeConfig(t, `{"mcpServers":{"mine":{"command":"x","env":{"TOKEN":"YOUR_TOKEN"}}}}`)

		result := NewPlaceholderCheck(f.load()).Run()
		assert.Equal(t, SeverityPass, result.Status)
	})
}

func TestBackupCheck(t *testing.T) {
	t.Run("no snapshots", func(t *testing.T) {
		m := backup.NewManager(backup.WithBackupDir(filepath.Join(t.TempDir(), "not", "yet")))
		result := NewBackupCheck(m).Run()
		assert.Equal(t, SeverityPass, result.Status)
		assert.Contains(t, result.Message, "no snapshots yet")
	})

	t.Run("with snapshots", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "config.json")
		require.NoError(t, os.WriteFile(src, []byte("{}"), 0o644))

		m := backup.NewManager(backup.WithBackupDir(filepath.Join(root, "backups")))
		_, err := m.Snapshot(src, "test")
		require.NoError(t, err)

		result := NewBackupCheck(m).Run()
		assert.Equal(t, SeverityPass, result.Status)
		assert.Equal(t, 1, result.Details["count"])
	})
}

func ptr(s string) *string { return &s }
