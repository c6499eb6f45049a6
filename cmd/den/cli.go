package main

import (
	"context"
	"io"
	"time"

	"github.com/isaacchacko/den/accrete"
	"github.com/isaacchacko/den/fs"
	"github.com/isaacchacko/den/layout"
	"github.com/isaacchacko/den/session"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Den      *accrete.Den
	Sessions *session.Registry
	Layouter *layout.Layouter
	Exporter *fs.Exporter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	GeminiKey string        `name:"gemini-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model     string        `env:"DEN_MODEL" default:"gemini-2.5-flash" help:"Gemini model"`
	SerperKey string        `name:"serper-key" env:"SERPER_API_KEY" help:"Serper API key; DuckDuckGo is used when unset"`
	Browser   bool          `help:"Render JavaScript-heavy hosts in headless Chrome"`
	ChromeBin string        `name:"chrome-bin" env:"DEN_CHROME_BIN" help:"Chrome binary used with --browser"`
	Timeout   time.Duration `default:"60s" help:"Timeout for each model or search call"`
	Verbose   bool          `short:"v" help:"Log to stderr"`

	Explore ExploreCmd `cmd:"" help:"Search a topic and grow a knowledge den from the results"`
	Hop     HopCmd     `cmd:"" help:"Page through the search results for a query"`
}

// SearchFlags are shared by commands that run a web search.
type SearchFlags struct {
	Lang string `help:"Result language, e.g. en"`
	Safe bool   `help:"Enable safe search"`
	Site string `help:"Restrict results to a site, e.g. wikipedia.org"`
}

// ExploreCmd is the "explore" subcommand.
type ExploreCmd struct {
	SearchFlags

	Query        string   `arg:"" help:"Topic to explore"`
	Pages        int      `default:"3" help:"Search results ingested into the den"`
	Burrow       []string `short:"b" help:"Concept to deep-dive after seeding (repeatable)"`
	Send         []string `short:"s" name:"send" help:"URL to send to the den after seeding (repeatable)"`
	PreviewDepth int      `default:"-1" help:"Lay out only this many levels; -1 lays out the full tree"`
	Out          string   `short:"o" type:"path" help:"Export the den to this directory"`
}

// HopCmd is the "hop" subcommand.
type HopCmd struct {
	SearchFlags

	Query string `arg:"" help:"Search query"`
	Steps int    `default:"0" help:"Pages to move; negative steps move backwards"`
	All   bool   `short:"a" help:"List every page of the session"`
}
