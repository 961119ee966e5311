package cli

import (
	"fmt"
)

type QueueCmd struct {
	List   QueueListCmd   `cmd:"" help:"List queued requests awaiting sync." default:"1"`
	Delete QueueDeleteCmd `cmd:"" help:"Remove a queued request."`
	Retry  QueueRetryCmd  `cmd:"" help:"Bump the attempt counter on a queued request."`
}

type QueueListCmd struct{}

func (c *QueueListCmd) Run(ctx *Context) error {
	reqs, err := ctx.Store.GetPendingRequests()
	if err != nil {
		return err
	}

	if len(reqs) == 0 {
		fmt.Println("Request queue is empty.")
		return nil
	}

	fmt.Println(HeaderStyle.Render(fmt.Sprintf("%d queued request(s)", len(reqs))))
	for _, req := range reqs {
		fmt.Printf("  %s  %-6s %s  priority=%d attempts=%d  %s\n",
			req.ID, req.Method, req.Endpoint, req.Priority, req.Attempts,
			MutedStyle.Render(req.CreatedAt.Format("2006-01-02 15:04")))
	}

	return nil
}

type QueueDeleteCmd struct {
	ID string `arg:"" help:"Queued request ID."`
}

func (c *QueueDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.DeleteRequest(c.ID); err != nil {
		return err
	}
	fmt.Printf("Removed queued request %s\n", c.ID)
	return nil
}

type QueueRetryCmd struct {
	ID string `arg:"" help:"Queued request ID."`
}

func (c *QueueRetryCmd) Run(ctx *Context) error {
	if err := ctx.Store.IncrementRequestAttempts(c.ID); err != nil {
		return err
	}
	fmt.Printf("Incremented attempts for request %s\n", c.ID)
	return nil
}
