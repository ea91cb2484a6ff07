// Command aeos-in-notion watches a Notion task board and executes the checklist of
// every queued task assigned to this worker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"aeosinnotion/pkg/config"
	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/version"
)

// cliOptions holds the parsed command line.
type cliOptions struct {
	overrides   config.Overrides
	configFile  string
	envFile     string
	projectDir  string
	showVersion bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// parseFlags accepts both the short and the long spelling of every option.
func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("aeos-in-notion", flag.ContinueOnError)
	fs.SetOutput(stderr)

	for _, name := range []string{"t", "tasksDB"} {
		fs.StringVar(&opts.overrides.TasksDB, name, "", "Notion Database ID for your task board")
	}
	for _, name := range []string{"c", "commandsDB"} {
		fs.StringVar(&opts.overrides.CommandsDB, name, "", "Notion Database ID to populate available commands")
	}
	for _, name := range []string{"n", "name"} {
		fs.StringVar(&opts.overrides.Name, name, "", "name agents to assign tasks to specific instances")
	}
	for _, name := range []string{"d", "debug"} {
		fs.BoolVar(&opts.overrides.Debug, name, false, "enable debug console logs")
	}
	for _, name := range []string{"l", "log"} {
		fs.BoolVar(&opts.overrides.LogToFile, name, false, "enable debug logging to file")
	}
	fs.StringVar(&opts.configFile, "config", "", "Path to a JSON config file")
	fs.StringVar(&opts.envFile, "env", config.DefaultEnvFile, "Path to a dotenv file")
	fs.StringVar(&opts.projectDir, "projectdir", ".", "Directory holding the encrypted secrets file")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err //nolint:wrapcheck // flag already printed usage
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// run contains the main application logic and returns an exit code.
// This allows defers to execute before os.Exit is called.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "aeos-in-notion %s\n", version.Version)
		fmt.Fprintf(stdout, "  commit: %s\n", version.Commit)
		fmt.Fprintf(stdout, "  built:  %s\n", version.Date)
		return 0
	}

	if _, err := config.UnlockSecrets(opts.projectDir); err != nil {
		fmt.Fprintf(stderr, "❌ Failed to unlock secrets: %v\n", err)
		return 1
	}

	if err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
		Overrides:  opts.overrides,
	}); err != nil {
		fmt.Fprintf(stderr, "❌ Failed to load configuration: %v\n", err)
		return 1
	}
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 1
	}

	logx.SetDebugConfig(cfg.Logs.Debug, cfg.Logs.File, cfg.Logs.Dir)
	defer func() {
		if closeErr := logx.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "Warning: failed to close log file: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, &cfg)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 1
	}
	defer a.Close()

	if err := a.poller.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "👋 Stopped")
	return 0
}
