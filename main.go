package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ductflow/config"
	"ductflow/driver"
	"ductflow/model"
	"ductflow/server"
	"ductflow/voxel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var (
	cfgPath string
	cfg     *config.Config
)

func main() {
	upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ductflow",
		Short:         "Voxel geometry preparation and steady-state control for LB duct flow",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(cfgPath); err != nil {
				return err
			}
			return cfg.ApplyLogging()
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "ini configuration file")
	root.AddCommand(prepareCmd(), runCmd())
	return root
}

func loader() voxel.Loader {
	return voxel.BinvoxLoader{Border: model.VoxelBorder}
}

func prepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Classify the voxel model, write the boundary mask and report the calibrated forcing",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := driver.New(cfg, loader(), nil, nil).Prepare(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lattice    %v\nsolid      %d\nboundary   %s\nbody force %v\nRe         %.2f\n",
				b.Mask.Dims(), b.Mask.Count(), cfg.BoundaryPath(), b.BodyForce, b.Duct.Reynolds())
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var (
		forces string
		serve  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the steady-state monitor from a recorded force history",
		RunE: func(cmd *cobra.Command, args []string) error {
			solver, err := driver.OpenForceLog(forces)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := driver.NewHub(64)
			d := driver.New(cfg, loader(), solver, hub)
			if !serve {
				res, err := d.Run(ctx)
				report(cmd, res)
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			srvCtx, stopServer := context.WithCancel(ctx)
			defer stopServer()
			g.Go(func() error {
				return server.NewServer(cfg.Server.Addr, upgrader, hub).Serve(srvCtx)
			})
			g.Go(func() error {
				defer stopServer()
				res, err := d.Run(ctx)
				report(cmd, res)
				return err
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&forces, "forces", "f", "forces.csv", "force history, one \"iteration,fx,fy,fz\" record per line")
	cmd.Flags().BoolVar(&serve, "serve", false, "stream progress over websocket while running")
	return cmd
}

func report(cmd *cobra.Command, res driver.Result) {
	log.WithFields(log.Fields{
		"state":     res.State,
		"iteration": res.Last.Iteration,
		"max_diff":  res.Last.MaxDiff,
	}).Info("run finished")
	fmt.Fprintf(cmd.OutOrStdout(), "%s at iteration %d\n", res.State, res.Last.Iteration)
}
