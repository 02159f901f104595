package catalog

import "path/filepath"

// Options supplies the machine-specific values embedded in default launch specs.
type Options struct {
	// Home is the user's home directory.
	Home string

	// ServersDir holds checkouts of bundled-local components.
	// Defaults to <Home>/mcp-servers.
	ServersDir string
}

// Default returns the compiled-in catalog of fifteen components.
func Default(opts Options) *Catalog {
	serversDir := opts.ServersDir
	if serversDir == "" {
		serversDir = filepath.Join(opts.Home, "mcp-servers")
	}

	quiet := map[string]string{"NODE_NO_WARNINGS": "1"}

	node := func(name, desc string, env map[string]string, args ...string) Entry {
		return Entry{
			Name:        name,
			Kind:        KindRemotePackage,
			Description: desc,
			Launch: LaunchSpec{
				Command: "npx",
				Args:    append([]string{"-y"}, args...),
				Env:     env,
			},
		}
	}

	python := func(name, desc string, extraEnv map[string]string) Entry {
		env := map[string]string{"PYTHONUNBUFFERED": "1"}
		for k, v := range extraEnv {
			env[k] = v
		}
		return Entry{
			Name:        name,
			Kind:        KindBundledLocal,
			Description: desc,
			Launch: LaunchSpec{
				Command: "python",
				Args:    []string{"server.py"},
				Env:     env,
				Cwd:     filepath.Join(serversDir, name),
			},
		}
	}

	return New(
		node("filesystem", "Read and write files under the home directory", quiet,
			"@modelcontextprotocol/server-filesystem", opts.Home),
		node("memory", "Persistent knowledge graph memory", quiet,
			"@modelcontextprotocol/server-memory"),
		node("sequential-thinking", "Structured step-by-step reasoning", quiet,
			"@modelcontextprotocol/server-sequential-thinking"),
		node("github-manager", "GitHub repositories, issues and pull requests",
			map[string]string{"GITHUB_PERSONAL_ACCESS_TOKEN": "YOUR_GITHUB_TOKEN"},
			"@modelcontextprotocol/server-github"),
		node("sqlite", "SQLite database access", quiet,
			"mcp-sqlite", filepath.Join(serversDir, "databases", "dev.db")),
		node("playwright", "Browser automation", quiet,
			"@playwright/mcp@0.0.37", "--browser", "chromium"),
		node("web-search", "Brave web search",
			map[string]string{"BRAVE_API_KEY": "YOUR_BRAVE_KEY"},
			"@modelcontextprotocol/server-brave-search"),
		node("git-ops", "Git repository operations",
			map[string]string{
				"NODE_NO_WARNINGS": "1",
				"GIT_REPO_PATH":    filepath.Join(opts.Home, "mcp-project"),
			},
			"@cyanheads/git-mcp-server"),
		node("perplexity", "Perplexity search",
			map[string]string{"PERPLEXITY_API_KEY": "YOUR_PERPLEXITY_KEY"},
			"@modelcontextprotocol/server-perplexity"),
		python("desktop-commander", "Terminal and desktop file operations", nil),
		python("expert-role-prompt", "Expert role prompting", nil),
		python("converse-enhanced", "Multi-model conversation",
			map[string]string{"OPENAI_API_KEY": "YOUR_OPENAI_KEY"}),
		python("kimi-k2-code-context", "Code context indexing", nil),
		python("kimi-k2-resilient", "Resilient Kimi K2 access", nil),
		python("rag-context", "Retrieval-augmented context", nil),
	)
}
