package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload and play views",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := openDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		srv, ctrl, err := buildServer(ctx, d)
		if err != nil {
			return err
		}
		defer ctrl.Bridge().Close()

		addr := resolveAddr(cmd, d.cfg)
		fmt.Fprintf(os.Stderr, "Serving on http://%s\n", addr)
		return srv.Run(ctx, addr)
	},
}

// buildServer wires the bridge, play controller and HTTP surface. A stored
// session is resumed so the play view continues where it stopped.
func buildServer(ctx context.Context, d *deps) (*web.Server, *play.Controller, error) {
	ext, err := d.extractor(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("configure extractor: %w", err)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	host := web.NewHost()
	b := bridge.New(host)
	ctrl := play.NewController(d.manager(), b)
	if d.relay != nil {
		ctrl.Subscribe(d.relay.BridgeEvent)
	}

	if st, err := ctrl.Resume(ctx); err == nil {
		log.Printf("resumed session %s at question %d of %d", st.SessionID, st.Index+1, st.Total)
	} else if !play.IsNoSession(err) {
		return nil, nil, fmt.Errorf("resume session: %w", err)
	}

	srv := web.New(ctrl, host, ext, web.WithArchive(d.archive(ctx)))
	return srv, ctrl, nil
}
