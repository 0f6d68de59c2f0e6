package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"whiteboard/internal/board"
	"whiteboard/internal/client"
	"whiteboard/internal/mcpserver"
	"whiteboard/internal/shape"

	"github.com/spf13/cobra"
)

func newMCPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcp",
		Short:         "Serve MCP drawing tools on stdio, editing a board as a regular client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveMCP,
	}
	cmd.Flags().String("url", defaultBoardURL, "Board websocket URL")
	cmd.Flags().Duration("timeout", 10*time.Second, "How long to wait for the board's shapes")
	return cmd
}

// readyHandler forwards to the board and closes ready on the first
// shapes:init.
type readyHandler struct {
	*board.Board
	once  sync.Once
	ready chan struct{}
}

func (h *readyHandler) Init(list shape.List) {
	h.Board.Init(list)
	h.once.Do(func() { close(h.ready) })
}

// attachBoard joins the board at url and returns a local board that has
// already adopted the server's list. Edits made before that would replace
// every collaborator's shapes.
func attachBoard(ctx context.Context, url string, timeout time.Duration) (*board.Board, *client.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := client.Dial(dialCtx, url)
	if err != nil {
		return nil, nil, err
	}

	h := &readyHandler{Board: board.New(board.WithEmitter(c)), ready: make(chan struct{})}
	go func() {
		if err := c.Run(ctx, h); err != nil && ctx.Err() == nil {
			log.Printf("[MCP] board sync stopped: %v", err)
		}
	}()

	select {
	case <-h.ready:
		return h.Board, c, nil
	case <-dialCtx.Done():
		c.Close()
		return nil, nil, fmt.Errorf("no snapshot from %s: %w", url, dialCtx.Err())
	}
}

func serveMCP(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	// stdout carries the MCP protocol.
	log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	b, c, err := attachBoard(ctx, url, timeout)
	if err != nil {
		return err
	}
	defer c.Close()

	return mcpserver.New(b).ServeStdio()
}
