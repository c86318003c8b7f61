package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizarcade/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Serve the play view and open the operator console",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	playCmd.Flags().String("log-file", "", "Write server logs to this file (discarded by default while the console runs)")
}

func runPlay(cmd *cobra.Command) error {
	// The console owns the terminal; server logs go elsewhere.
	logOut := io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log.SetOutput(logOut)
	defer log.SetOutput(os.Stderr)
	gin.DefaultWriter = logOut
	gin.DefaultErrorWriter = logOut

	d, err := openDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	srv, ctrl, err := buildServer(ctx, d)
	if err != nil {
		return err
	}
	defer ctrl.Bridge().Close()

	addr := resolveAddr(cmd, d.cfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, addr)
		cancel()
	}()

	consoleErr := app.Run(ctx, ctrl, "http://"+addr)
	cancel()
	if err := <-errCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return consoleErr
}
