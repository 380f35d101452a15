package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fleetyard/gate-ops/internal/authz"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/domain/model"
	"github.com/fleetyard/gate-ops/internal/presence"
)

// gateGuard mirrors the server's role gate on presence transitions so an
// operator without the role fails locally with a clear message instead
// of a round trip.
var gateGuard = authz.Require(auth.RoleAdmin, auth.RoleManager, auth.RoleGateSecurity)

func requireGateRole(cc *commandContext) error {
	sessions := cc.Console.Sessions
	switch gateGuard.Evaluate(sessions.Status(), sessions.User()) {
	case authz.DecisionAllow:
		return nil
	case authz.DecisionDenyAnonymous:
		return errors.New("not logged in; run gatectl login first")
	default:
		return errors.New("your roles do not permit gate transitions")
	}
}

func runStatus(cc *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gatectl status <plate>")
	}
	if err := requireSession(cc); err != nil {
		return err
	}

	vehicle, err := resolveVehicle(cc, args[0])
	if err != nil {
		return err
	}

	snap, err := cc.Console.Presence.Current(cc.Ctx, vehicle)
	if err != nil {
		return err
	}
	printSnapshot(cc, snap)
	return nil
}

func runCheckIn(cc *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gatectl check-in <plate>")
	}
	if err := requireSession(cc); err != nil {
		return err
	}
	if err := requireGateRole(cc); err != nil {
		return err
	}

	vehicle, err := resolveVehicle(cc, args[0])
	if err != nil {
		return err
	}

	record, err := cc.Console.Presence.CheckIn(cc.Ctx, vehicle)
	if err != nil {
		return renderTransitionError(cc, err)
	}

	fmt.Printf("%s checked in at %s by %s\n",
		vehicle.Plate,
		record.CheckedInAt.Local().Format("15:04:05"),
		record.CheckedInBy.Name)
	return nil
}

func runCheckOut(cc *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gatectl check-out <plate>")
	}
	if err := requireSession(cc); err != nil {
		return err
	}
	if err := requireGateRole(cc); err != nil {
		return err
	}

	vehicle, err := resolveVehicle(cc, args[0])
	if err != nil {
		return err
	}

	record, err := cc.Console.Presence.CheckOut(cc.Ctx, vehicle)
	if err != nil {
		if errors.Is(err, presence.ErrNotInside) {
			return fmt.Errorf("%s is not inside; nothing to check out", vehicle.Plate)
		}
		return renderTransitionError(cc, err)
	}

	fmt.Printf("%s checked out after %s\n",
		vehicle.Plate,
		model.FormatDuration(cc.Console.Presence.StayDuration(*record)))
	return nil
}

// resolveVehicle turns a plate query into exactly one vehicle. On an
// ambiguous match the operator picks a candidate interactively; nothing
// is ever auto-selected among several.
func resolveVehicle(cc *commandContext, plateQuery string) (model.Vehicle, error) {
	vehicle, err := cc.Console.Presence.Resolve(cc.Ctx, plateQuery)
	if err == nil {
		return vehicle, nil
	}

	var ambiguous *presence.AmbiguousMatchError
	if !errors.As(err, &ambiguous) {
		if errors.Is(err, presence.ErrNoMatch) {
			return model.Vehicle{}, fmt.Errorf("no vehicle matches %q", plateQuery)
		}
		return model.Vehicle{}, err
	}

	fmt.Printf("%d vehicles match %q:\n", len(ambiguous.Candidates), plateQuery)
	for i, v := range ambiguous.Candidates {
		fmt.Printf("  [%d] %s  %s\n", i+1, v.Plate, v.Label)
	}
	fmt.Print("Select a vehicle: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("read selection: %w", err)
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(ambiguous.Candidates) {
		return model.Vehicle{}, errors.New("invalid selection")
	}
	return ambiguous.Candidates[choice-1], nil
}

// renderTransitionError prints the re-derived state carried by a stale
// rejection so the operator sees the truth instead of a bare failure.
func renderTransitionError(cc *commandContext, err error) error {
	var stale *presence.StaleStateError
	if errors.As(err, &stale) {
		fmt.Printf("The server rejected the transition; current state:\n")
		printSnapshot(cc, stale.Current)
		return errors.New("state was out of date, no change made")
	}
	return err
}

func printSnapshot(cc *commandContext, snap presence.Snapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Plate:\t%s\n", snap.Vehicle.Plate)
	fmt.Fprintf(w, "Label:\t%s\n", snap.Vehicle.Label)
	fmt.Fprintf(w, "State:\t%s\n", snap.State)
	fmt.Fprintf(w, "Next action:\t%s\n", snap.Transition())

	if latest := snap.Latest; latest != nil {
		fmt.Fprintf(w, "Checked in:\t%s by %s\n",
			latest.CheckedInAt.Local().Format("2006-01-02 15:04"),
			latest.CheckedInBy.Name)
		if latest.CheckedOutAt != nil {
			out := latest.CheckedOutAt.Local().Format("2006-01-02 15:04")
			if latest.CheckedOutBy != nil {
				out += " by " + latest.CheckedOutBy.Name
			}
			fmt.Fprintf(w, "Checked out:\t%s\n", out)
		}
		fmt.Fprintf(w, "Stay:\t%s\n",
			model.FormatDuration(cc.Console.Presence.StayDuration(*latest)))
	}
	_ = w.Flush()
}
