package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var pretty bool
	var once bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print list change events as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for {
				err := watchEvents(runCtx, ctx.wsURL, cmd.OutOrStdout(), pretty)
				if runCtx.Err() != nil {
					return nil
				}
				if once {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[watch] disconnected: %v\n", err)
				select {
				case <-runCtx.Done():
					return nil
				case <-time.After(time.Second):
				}
			}
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", true, "Pretty print JSON events")
	cmd.Flags().BoolVar(&once, "once", false, "Exit on disconnect instead of reconnecting")
	return cmd
}

func watchEvents(ctx context.Context, wsURL string, out io.Writer, pretty bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatEvent(msg, pretty))
	}
}

func formatEvent(msg []byte, pretty bool) string {
	if !pretty {
		return string(msg)
	}
	var obj map[string]any
	if err := json.Unmarshal(msg, &obj); err != nil {
		return string(msg)
	}
	b, _ := json.MarshalIndent(obj, "", "  ")
	return string(b)
}
