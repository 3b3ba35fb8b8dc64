package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/certs"
	"github.com/Veraticus/cashflow/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger as a JSON HTTP API",
		Long: `Serve the ledger over HTTP until interrupted.

Endpoints:
  GET    /api/snapshot?currency=XXX
  PUT    /api/salary        {"salary": 85000}
  POST   /api/expenses      {"name": "Rent", "amount": 25000}
  DELETE /api/expenses/{id}
  PUT    /api/currency      {"currency": "USD"}
  GET    /api/report?format=pdf|text|json

With --tls the API is served over HTTPS using a self-signed localhost
certificate kept in server.cert_dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			cfg := server.Config{
				Addr:           addr,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				ExportFormat:   a.cfg.Export.Format,
			}
			if useTLS, _ := cmd.Flags().GetBool("tls"); useTLS || a.cfg.Server.TLS {
				tlsCfg, err := certs.TLSConfig(certs.NewFileManager(a.cfg.Server.CertDir))
				if err != nil {
					return fmt.Errorf("failed to load TLS certificate: %w", err)
				}
				cfg.TLS = tlsCfg
			}

			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			srv, err := server.New(svc, cfg, slog.Default())
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "listen address (default: server.addr)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	return cmd
}
