// TrustLens: trust assessment MCP server
//
// Scores organisations and AI systems across transparency, explainability,
// human oversight, risk controls and accountability, and writes the
// executive summary for each assessment.
//
// Usage:
//
//	trustlens serve                 # Start MCP server (stdio transport)
//	trustlens score answers.json    # Score an answer file offline
//	trustlens config                # Print the resolved configuration
package main

import (
	"fmt"
	"os"

	"github.com/HendryAvila/trustlens/internal/config"
	tlserver "github.com/HendryAvila/trustlens/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "score":
		if err := runScore(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := printConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("trustlens v%s\n", tlserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// configPath is the config file to load: $TRUSTLENS_CONFIG or the default.
func configPath() string {
	if p := os.Getenv("TRUSTLENS_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath()
}

func run() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	s, cleanup, err := tlserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// stdio server manages its own lifecycle and exits on EOF or signal.
	return server.ServeStdio(s)
}

func printConfig() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Printf("# %s\n# database: %s\n%s", configPath(), cfg.DBPath(), data)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `TrustLens v%s — trust assessment MCP server

Usage:
  trustlens serve                          Start the MCP server (stdio transport)
  trustlens score [flags] <answers.json>   Score an answer file and print the summary
  trustlens config                         Print the resolved configuration
  trustlens version                        Print the version

Score flags:
  -kind organisation|system   Assessment kind (default system)
  -responses N                Response count for the confidence note (default 1)
  -json                       Print the result as JSON

Configuration:
  ~/.trustlens/config.yaml, or the file named by TRUSTLENS_CONFIG.
  TRUSTLENS_* environment variables override file settings.

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "trustlens": {
        "command": "trustlens",
        "args": ["serve"]
      }
    }
  }
`, tlserver.Version)
}
