package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/txpool"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/core/vm"
	"github.com/katana-go/katana/eth/gasprice"
	"github.com/katana-go/katana/eth/producer"
	"github.com/katana-go/katana/katanalib/chain"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv/mdbx"
	"github.com/katana-go/katana/katanalib/log"
	"github.com/katana-go/katana/katanalib/tasks"
	"github.com/katana-go/katana/rpc"
)

var (
	nodeDBPath     string
	nodeRPCAddr    string
	nodeRPCCORS    string
	nodeBlockTime  time.Duration
	nodeForkURL    string
	nodeForkBlock  uint64
	nodeSeqAddress string
	nodeLogFormat  string
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Run the standalone developer sequencer",
	RunE:  runNode,
}

func init() {
	flags := nodeCmd.Flags()
	flags.StringVar(&nodeDBPath, "db-path", defaultDBPath, "path to the chaindata directory")
	flags.StringVar(&nodeRPCAddr, "rpc-addr", "0.0.0.0:5050", "address the JSON-RPC server listens on")
	flags.StringVar(&nodeRPCCORS, "rpc-cors", "*", "comma-separated list of allowed CORS origins")
	flags.DurationVar(&nodeBlockTime, "block-time", 0, "fixed interval between sealed blocks; 0 mines a block per incoming transaction (instant mining)")
	flags.StringVar(&nodeSeqAddress, "sequencer-address", "0x1", "sequencer address stamped on every sealed block header")
	flags.StringVar(&nodeLogFormat, "log-format", "text", "log output format: \"text\" (dev) or \"json\" (zap-backed, production)")

	// --fork-provider/--fork-block are accepted for surface-compatibility
	// with spec §6's CLI description but are not implemented: forking
	// against a live StarkNet gateway needs a real feeder-gateway client,
	// which is out of scope here (spec §1 non-goals). A value here only
	// produces a startup error rather than silently running un-forked.
	flags.StringVar(&nodeForkURL, "fork-provider", "", "unimplemented: fork state from a StarkNet gateway URL")
	flags.Uint64Var(&nodeForkBlock, "fork-block", 0, "unimplemented: block number to fork from")
}

func runNode(cmd *cobra.Command, args []string) error {
	if nodeForkURL != "" {
		return fmt.Errorf("--fork-provider is not implemented by this build: it requires a feeder-gateway client this node does not ship")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if nodeLogFormat == "json" {
		handler, err := log.NewZapHandler()
		if err != nil {
			return fmt.Errorf("build zap log handler: %w", err)
		}
		log.SetHandler(handler)
	} else if nodeLogFormat != "text" {
		return fmt.Errorf("unknown --log-format %q: expected \"text\" or \"json\"", nodeLogFormat)
	}
	logger := log.New(ctx)

	dbPath, err := expandPath(nodeDBPath)
	if err != nil {
		return err
	}
	db, err := mdbx.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database at %s: %w", dbPath, err)
	}
	defer db.Close()

	cfg := chain.Dev()
	sequencerAddr, err := sequencerAddressFromFlag(nodeSeqAddress)
	if err != nil {
		return err
	}
	cfg.SequencerAddress = sequencerAddr

	factory := state.NewFactory(db)
	writer := state.NewBlockWriter(db)
	chainReader := state.NewChainReader(db)
	pool := txpool.NewPool()

	mode := producer.ModeInstant
	if nodeBlockTime > 0 {
		mode = producer.ModeInterval
	}
	producerCfg := producer.Config{
		Mode:             mode,
		Interval:         nodeBlockTime,
		Limits:           producer.DefaultBlockLimits,
		SequencerAddress: cfg.SequencerAddress,
		ProtocolVersion:  cfg.ProtocolVersion,
		L1DAMode:         types.L1DACalldata,
		MaxTxnsPerBlock:  128,
	}

	oracle := gasprice.NewStarknetFixedOracle()

	nextBlockNumber := func() uint64 {
		n, found, err := chainReader.LatestBlockNumber(ctx)
		if err != nil || !found {
			return 0
		}
		return n + 1
	}
	validatingExecutor := vm.NewValidatingExecutor(factory, cfg.ChainID, producerCfg.Limits, nextBlockNumber)

	initialProvider, err := factory.Latest(ctx)
	if err != nil {
		return fmt.Errorf("read initial state: %w", err)
	}
	validator := txpool.NewValidator(initialProvider, validatingExecutor, false)

	tip, found, err := chainReader.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("read chain tip: %w", err)
	}
	var startBlockNumber uint64
	parent := common.FeltZero
	if found {
		h, ok, err := chainReader.BlockHashByNumber(ctx, tip)
		if err != nil {
			return fmt.Errorf("read tip hash: %w", err)
		}
		if !ok {
			return fmt.Errorf("chain tip header %d has no recorded hash", tip)
		}
		startBlockNumber = tip + 1
		parent = h
	}

	prod := producer.New(producerCfg, nil, pool, validator, writer, factory, oracle, startBlockNumber, parent)

	if !found {
		genesisHash, err := prod.SealGenesis(ctx, &types.StateDiff{}, uint64(time.Now().Unix()))
		if err != nil {
			return fmt.Errorf("seal genesis block: %w", err)
		}
		logger.Info("sealed genesis block", "hash", genesisHash.Hex())
	}

	rollingExecutor, err := vm.NewRollingExecutor(ctx, factory, cfg.ChainID, producerCfg.Limits, prod.BlockNumber())
	if err != nil {
		return fmt.Errorf("build block executor: %w", err)
	}
	prod.SetExecutor(rollingExecutor)

	rpcServer := rpc.New(rpc.Config{
		ChainID:     cfg.ChainID,
		Factory:     factory,
		Chain:       chainReader,
		Pool:        pool,
		Validator:   validator,
		CORSOrigins: splitCSV(nodeRPCCORS),
	})
	prod.SetNewHeadNotifier(rpcServer)

	supervisor := tasks.New(ctx)
	supervisor.Spawn("producer", func(ctx context.Context) error {
		return prod.Run(ctx)
	})
	supervisor.Spawn("rpc", func(ctx context.Context) error {
		return rpcServer.ListenAndServe(ctx, nodeRPCAddr)
	})

	logger.Info("katana node started", "rpc_addr", nodeRPCAddr, "db_path", dbPath, "block_number", prod.BlockNumber())

	<-ctx.Done()
	logger.Info("shutting down")
	return supervisor.Shutdown()
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sequencerAddressFromFlag(s string) (common.Address, error) {
	addr, err := common.FeltFromHex(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid sequencer address %q: %w", s, err)
	}
	return addr, nil
}
