package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grantledger/grant-node/api"
	"github.com/grantledger/grant-node/cmd/utils"
	"github.com/grantledger/grant-node/config"
	"github.com/grantledger/grant-node/core/grantchain"
	"github.com/grantledger/grant-node/core/statistics"
	"github.com/grantledger/grant-node/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	abciTypes "github.com/tendermint/tendermint/abci/types"
	tmCfg "github.com/tendermint/tendermint/config"
	tmLog "github.com/tendermint/tendermint/libs/log"
	tmNode "github.com/tendermint/tendermint/node"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	"github.com/tendermint/tendermint/proxy"
	rpc "github.com/tendermint/tendermint/rpc/client/local"
	"golang.org/x/sync/errgroup"
)

// StartNode is the command that runs the consensus engine together with the ledger.
var StartNode = &cobra.Command{
	Use:   "start",
	Short: "Run the grant ledger node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runNode(cmd)
	},
}

func runNode(cmd *cobra.Command) error {
	logger, err := log.NewLogger(cfg)
	if err != nil {
		return err
	}

	storages, err := openStorages(cfg)
	if err != nil {
		return err
	}

	app := grantchain.NewGrantBlockchain(storages, cfg, logger)
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close databases", "err", err)
		}
	}()

	app.SetStatisticData(statistics.New(prometheus.DefaultRegisterer))

	node, err := startTendermintNode(app, config.GetTmConfig(cfg), logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		select {
		case <-app.Halted():
			logger.Info("halt height reached, stopping", "height", app.Height())
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	if !cfg.ValidatorMode {
		server := api.NewServer(app, rpc.New(node), logger.With("module", "api"), cfg.APICorsAllowedOrigins, prometheus.DefaultGatherer)
		group.Go(func() error {
			return server.Run(ctx, cfg.APIListenAddress)
		})
	}

	runErr := group.Wait()

	if err := node.Stop(); err != nil {
		logger.Error("failed to stop node", "err", err)
	}
	node.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	return nil
}

func openStorages(cfg *config.Config) (*utils.Storage, error) {
	storages := utils.NewStorage(utils.GetGrantHome(), cfg.DBBackend)

	if _, err := storages.InitStateDB(); err != nil {
		return nil, err
	}

	if !cfg.ValidatorMode {
		if _, err := storages.InitEventDB(); err != nil {
			return nil, err
		}
	}

	return storages, nil
}

func startTendermintNode(app abciTypes.Application, cfg *tmCfg.Config, logger tmLog.Logger) (*tmNode.Node, error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(cfg.NodeKeyFile())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load node key")
	}

	node, err := tmNode.NewNode(
		cfg,
		privval.LoadOrGenFilePV(cfg.PrivValidatorKeyFile(), cfg.PrivValidatorStateFile()),
		nodeKey,
		proxy.NewLocalClientCreator(app),
		tmNode.DefaultGenesisDocProviderFunc(cfg),
		tmNode.DefaultDBProvider,
		tmNode.DefaultMetricsProvider(cfg.Instrumentation),
		logger.With("module", "tendermint"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a node")
	}

	if err = node.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start node")
	}

	logger.Info("Started node", "nodeInfo", node.Switch().NodeInfo())

	return node, nil
}
