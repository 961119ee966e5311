package system

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evrwell/habitstore/internal/cache"
	"github.com/evrwell/habitstore/internal/cli"
	"github.com/evrwell/habitstore/internal/constants"
)

type SweepCmd struct {
	Watch    bool          `help:"Keep sweeping on an interval until interrupted."`
	Interval time.Duration `help:"Sweep interval when watching." default:"30m"`
}

func (c *SweepCmd) Run(ctx *cli.Context) error {
	if !c.Watch {
		purged, err := ctx.Store.ClearExpiredCache()
		if err != nil {
			return fmt.Errorf("cache sweep failed: %w", err)
		}
		fmt.Printf("Purged %d expired cache entries\n", purged)
		return nil
	}

	interval := c.Interval
	if interval <= 0 {
		interval = constants.DefaultSweepInterval
	}

	sweeper := cache.NewSweeper(ctx.Store, interval)
	sweeper.Start()
	fmt.Printf("Sweeping expired cache entries every %s (Ctrl-C to stop)\n", interval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	sweeper.Stop()
	fmt.Println("Sweeper stopped.")
	return nil
}
