package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"whiteboard/internal/client"
	"whiteboard/internal/render"
	"whiteboard/internal/shape"

	"github.com/spf13/cobra"
)

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "render",
		Short:         "Join a board, take its current shapes and write them as a PNG",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          renderBoard,
	}
	cmd.Flags().String("url", defaultBoardURL, "Board websocket URL")
	cmd.Flags().StringP("output", "o", "whiteboard.png", "Output file")
	cmd.Flags().Int("width", 1280, "Canvas width")
	cmd.Flags().Int("height", 800, "Canvas height")
	cmd.Flags().String("background", render.DefaultBackground, "Background colour")
	cmd.Flags().Duration("timeout", 10*time.Second, "How long to wait for the board")
	return cmd
}

// snapshotHandler keeps the first shapes:init and ignores everything else.
type snapshotHandler struct {
	got chan shape.List
}

func (h *snapshotHandler) Init(list shape.List) {
	select {
	case h.got <- list:
	default:
	}
}

func (h *snapshotHandler) ApplyRemote(shape.List) {}

func renderBoard(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	output, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	background, _ := cmd.Flags().GetString("background")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c, err := client.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer c.Close()

	h := &snapshotHandler{got: make(chan shape.List, 1)}
	go c.Run(ctx, h)

	var list shape.List
	select {
	case list = <-h.got:
	case <-ctx.Done():
		return fmt.Errorf("no snapshot from %s: %w", url, ctx.Err())
	}

	canvas, err := render.NewCanvas(width, height, background)
	if err != nil {
		return err
	}
	defer canvas.Close()
	render.Repaint(canvas, list)

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := canvas.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d shapes to %s\n", len(list), output)
	return nil
}
