package system

import (
	"fmt"

	"github.com/evrwell/habitstore/internal/cli"
)

type ResetCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
}

// Run wipes habits, logs, streaks and cache. The request queue is kept
// so unconfirmed mutations survive a local reset.
func (c *ResetCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		fmt.Print("This wipes all local habits, logs, streaks and cached data. Continue? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Store.ClearAllData(); err != nil {
		return err
	}

	fmt.Println("Local data cleared. Queued requests were preserved.")
	return nil
}
