package main

// vitaledger – minimal operator CLI for the node core. Consensus, transport
// and the RPC façade live in their own services; this binary covers key
// generation and local batch execution for development.

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vitaledger-network/core"
	"vitaledger-network/pkg/config"
	"vitaledger-network/pkg/utils"
)

const version = "v0.1.0"

// appCfg is the configuration loaded in the persistent pre-run. It stays nil
// when no config file is present, in which case the built-in defaults apply;
// the local tooling must not require a deployed node layout.
var appCfg *config.Config

func initMiddleware(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	if cfg, err := config.LoadFromEnv(); err == nil {
		appCfg = cfg
	} else {
		logrus.Debugf("no config loaded, using defaults: %v", err)
	}

	lvl := utils.EnvOrDefault("LOG_LEVEL", "")
	if lvl == "" && appCfg != nil {
		lvl = appCfg.Logging.Level
	}
	if lvl == "" {
		lvl = "info"
	}
	lv, err := logrus.ParseLevel(lvl)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", lvl, err)
	}
	logrus.SetLevel(lv)
	core.SetLogger(logrus.StandardLogger())
	return nil
}

// schedulerConfig merges the loaded configuration with the --workers
// override; a zero override defers to the config, then to core defaults.
func schedulerConfig(workers int) core.SchedulerConfig {
	cfg := core.SchedulerConfig{Workers: workers}
	if appCfg != nil {
		if workers <= 0 {
			cfg.Workers = appCfg.Scheduler.Workers
		}
		cfg.MaxRounds = appCfg.Scheduler.MaxRounds
		cfg.MaxRetries = appCfg.Scheduler.MaxRetries
		cfg.OwnershipLimit = appCfg.Scheduler.OwnershipLimit
	}
	return cfg
}

// openState picks the configured backend. The returned closer is a no-op for
// the in-memory store.
func openState() (core.StateStore, func(), error) {
	if appCfg != nil && appCfg.State.Backend == "bolt" {
		path := appCfg.State.DBPath
		if path == "" {
			path = "data/state.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("state dir: %w", err)
			}
		}
		s, err := core.OpenBoltState(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return core.NewMemoryState(), func() {}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:               "vitaledger",
		Short:             "VitaLedger node core tooling",
		PersistentPreRunE: initMiddleware,
	}
	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(versionCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "generate a secp256k1 key pair and print its address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			priv, err := core.GeneratePrivateKey()
			if err != nil {
				return err
			}
			fmt.Printf("private: %x\n", priv.Bytes())
			fmt.Printf("address: %s\n", priv.PubKey().Address())
			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "batch", Short: "local batch execution"}

	demo := &cobra.Command{
		Use:   "demo [txs]",
		Short: "run a signed transfer batch through the parallel scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 8
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("bad tx count %q", args[0])
				}
				count = n
			}
			workers, _ := cmd.Flags().GetInt("workers")
			return runDemoBatch(count, workers)
		},
	}
	demo.Flags().Int("workers", 0, "execution pool width (0 = from config)")
	cmd.AddCommand(demo)
	return cmd
}

func runDemoBatch(count, workers int) error {
	state, closeState, err := openState()
	if err != nil {
		return err
	}
	defer closeState()

	// One sender per transaction: within a batch every execution reads the
	// opening snapshot, so sequential nonces from a single sender would
	// conflict by design.
	alloc := core.GenesisAlloc{}
	txs := make([]*core.Transaction, count)
	for i := 0; i < count; i++ {
		priv, err := core.GeneratePrivateKey()
		if err != nil {
			return err
		}
		alloc[priv.PubKey().Address()] = core.U256FromUint64(1_000)

		to := core.Address{0xd0, byte(i)}
		tx := core.NewTransaction(0, &to, core.U256FromUint64(1), nil)
		if err := core.SignTransaction(tx, priv); err != nil {
			return err
		}
		txs[i] = tx
	}
	if err := alloc.Apply(state); err != nil {
		return err
	}
	block := core.NewBlock(1, core.HashZero, txs, uint64(time.Now().Unix()))

	sched := core.NewSeamlessScheduler(state, core.NewTransferExecutor(), schedulerConfig(workers))
	res, err := sched.ExecuteBlock(block)
	if err != nil {
		return err
	}

	fmt.Printf("confirmed:  %d\n", len(res.Confirmed))
	fmt.Printf("reexec:     %d\n", res.Reexecutions)
	fmt.Printf("block hash: %s\n", res.BlockHash)
	fmt.Printf("state root: %s\n", res.StateRoot)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println("vitaledger", version)
		},
	}
}
