package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/fleetyard/gate-ops/internal/domain/model"
	"github.com/fleetyard/gate-ops/internal/notify"
)

func runWatch(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	filterExpr := fs.String("filter", "", "JMESPath expression applied to every event")
	asJSON := fs.Bool("json", false, "emit toasts as structured log lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(cc); err != nil {
		return err
	}

	stack, err := cc.Console.Realtime(*filterExpr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cc.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var toasts notify.Sink = notify.SinkFunc(printToast)
	if *asJSON {
		toasts = notify.SlogSink{Logger: cc.Logger}
	}
	detach := stack.Attach(toasts)
	defer detach()

	fmt.Println("Watching gate activity. Press Ctrl-C to stop.")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stack.Refresher.Run(ctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println()
	printFeedSummary(stack.PanelFeed.Snapshot(), stack.Counter.Count())
	return nil
}

func printToast(t notify.Toast) {
	fmt.Printf("%s  [%s] %s", t.At.Local().Format("15:04:05"), t.Level, t.Title)
	if t.Body != "" {
		fmt.Printf(": %s", t.Body)
	}
	fmt.Println()
}

// printFeedSummary renders the retained recent activity and the unread
// notification count when the watch ends.
func printFeedSummary(events []model.ActivityEvent, unread int) {
	if len(events) == 0 {
		fmt.Println("No activity observed.")
	} else {
		fmt.Println("Recent activity:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, ev := range events {
			fmt.Fprintf(w, "  %s\t%s\n", ev.Timestamp.Local().Format("15:04:05"), ev.Kind)
		}
		_ = w.Flush()
	}
	fmt.Printf("Unread notifications: %d\n", unread)
}
