package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"casevault/internal/config"
	"casevault/internal/content"
	"casevault/internal/ledger"
	"casevault/internal/server"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the casevault API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			store, err := newBlobStore(cfg)
			if err != nil {
				return err
			}

			codec, err := newShortIDCodec(cfg)
			if err != nil {
				return err
			}

			logger.Info("opening ledger", "path", cfg.DBPath)
			st, err := ledger.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			svc := content.NewService(store, st, st)
			srv := server.New(addr, svc, codec, logger)
			return srv.ListenAndServe()
		},
	}
}
