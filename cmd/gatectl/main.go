// Command gatectl is the operator console for gate operations: login,
// presence transitions, and live activity watching against gate-server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/fleetyard/gate-ops/config"
	"github.com/fleetyard/gate-ops/internal/bootstrap"
)

type commandFn func(cc *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx     context.Context
	Logger  *slog.Logger
	Config  config.AppConfig
	Console *bootstrap.Console
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	cc := &commandContext{
		Ctx:     context.Background(),
		Logger:  logger,
		Config:  cfg,
		Console: bootstrap.NewConsole(cfg, logger),
	}
	if err := cmd.run(cc, os.Args[2:]); err != nil {
		logger.Error("command failed", "command", cmdName, "error", err)
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate and persist a session token",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Invalidate the session and clear the stored token",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current user, roles, and dashboard",
			run:         runWhoami,
		},
		"status": {
			name:        "status",
			description: "Show a vehicle's presence state by plate",
			run:         runStatus,
		},
		"check-in": {
			name:        "check-in",
			description: "Check a vehicle in through the gate",
			run:         runCheckIn,
		},
		"check-out": {
			name:        "check-out",
			description: "Check a vehicle out through the gate",
			run:         runCheckOut,
		},
		"watch": {
			name:        "watch",
			description: "Stream live gate activity (optionally filtered)",
			run:         runWatch,
		},
	}
}

func printUsage() {
	fmt.Fprintf(os.Stdout, "Usage: gatectl <command> [flags]\n\nAvailable commands:\n")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %-12s %s\n", name, cmds[name].description)
	}
}
