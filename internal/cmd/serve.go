package cmd

import (
	"github.com/spf13/cobra"

	"github.com/josephjilovec/quantumflow/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve workflow and schedule state over HTTP",
	Long: `Start the read-only status server. Endpoints:

  GET /workflows                   list workflow definitions
  GET /workflows/{id}              one workflow definition
  GET /workflows/{id}/schedule     the persisted schedule, in priority order
  GET /healthz                     liveness check
  GET /metrics                     Prometheus metrics

The server runs until interrupted and drains connections on shutdown.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := serveAddr
	if addr == "" {
		addr = sess.cfg.Server.Addr
	}

	srv := server.New(sess.store, sess.workflows, server.Config{
		Address: addr,
		Logger:  sess.logger,
	})
	return srv.Run(cmd.Context())
}
