package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/session"
)

// NewWatchCmd creates the watch command: a live monitor of session state
// transitions. It replaces the scattered debug components that used to
// poll storage directly; observation goes through the manager's
// subscription mechanism only.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Monitor session state transitions until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayBanner("authctl")

			a, closer, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer closer()

			unsubscribe := a.manager.Subscribe(printTransition)
			defer unsubscribe()

			if err := a.manager.StartWatcher(); err != nil {
				return err
			}

			snap := a.manager.Snapshot()
			fmt.Printf("%s watching session (status %s)\n",
				time.Now().Format(time.TimeOnly), colourStatus(snap.Status))

			waitForStopSignal()
			fmt.Println("stopped")
			return nil
		},
	}
}

func printTransition(event session.Event) {
	fmt.Printf("%s %s -> %s", event.At.Format(time.TimeOnly),
		colourStatus(event.Previous.Status), colourStatus(event.Current.Status))
	if event.Current.ProfileIncomplete {
		fmt.Printf(" %s(profile incomplete)%s", Gray, ResetColor)
	}
	fmt.Println()
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayBanner(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
