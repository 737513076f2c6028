package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// LogLevelEnv overrides the log level when --verbose is not given.
const LogLevelEnv = "MKSITE_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing command output. Defaults to stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render a site tree into its build directory"`
	Import  ImportCmd  `cmd:"" help:"Convert documents from other formats into page templates"`
	History HistoryCmd `cmd:"" help:"List recent builds from the history ledger"`
	Show    VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := parseLogLevel(c.Verbose)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel gives --verbose precedence over MKSITE_LOG_LEVEL. Unknown
// values fall back to info.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	raw := strings.TrimSpace(os.Getenv(LogLevelEnv))
	if raw == "" {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
