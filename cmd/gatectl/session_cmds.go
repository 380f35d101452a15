package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fleetyard/gate-ops/internal/api"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/session"
)

const stdinFileDescriptor = 0

func runLogin(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("the -email flag is required")
	}

	password, err := promptPassword()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	user, err := cc.Console.Sessions.Login(cc.Ctx, *email, password)
	if err != nil {
		if fields := api.FieldErrors(err); len(fields) > 0 {
			for field, msg := range fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
			}
		}
		if api.IsAuth(err) {
			return errors.New("invalid email or password")
		}
		return err
	}

	fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
	fmt.Printf("Roles: %s\n", strings.Join(auth.RoleNames(user.Roles), ", "))
	return nil
}

func runLogout(cc *commandContext, args []string) error {
	if err := cc.Console.Sessions.Initialize(cc.Ctx); err != nil {
		return err
	}
	cc.Console.Sessions.Logout(cc.Ctx)
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cc *commandContext, args []string) error {
	if err := cc.Console.Sessions.Initialize(cc.Ctx); err != nil {
		return err
	}

	user := cc.Console.Sessions.User()
	if user == nil {
		return errors.New("not logged in; run gatectl login first")
	}

	fmt.Printf("User:      %s <%s>\n", user.Name, user.Email)
	fmt.Printf("Roles:     %s\n", strings.Join(auth.RoleNames(user.Roles), ", "))
	fmt.Printf("Dashboard: %s\n", auth.DashboardFor(user.Roles))
	return nil
}

// promptPassword reads the password without echo when stdin is a
// terminal, and falls back to a plain line read when it is piped.
func promptPassword() (string, error) {
	if term.IsTerminal(stdinFileDescriptor) {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(stdinFileDescriptor)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// requireSession restores the persisted session and fails with a usable
// message when the console is not authenticated.
func requireSession(cc *commandContext) error {
	if err := cc.Console.Sessions.Initialize(cc.Ctx); err != nil {
		return err
	}
	if cc.Console.Sessions.Status() != session.StatusAuthenticated {
		return errors.New("not logged in; run gatectl login first")
	}
	return nil
}
