package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libroyalty-go/config"
	"github.com/bitfsorg/libroyalty-go/payout"
	"github.com/bitfsorg/libroyalty-go/royalty"
)

const programName = "royaltyctl"

type globalFlags struct {
	configFile string
	dataDir    string
	caller     string
	height     uint64
	debug      bool
	payoutTx   bool
}

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	flags   globalFlags
	cfg     config.Config
	out     io.Writer
	logger  *slog.Logger
	logFile *os.File
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

// loadConfig resolves configuration: defaults, then the YAML file, then
// ROYALTY_* environment variables, then command line flags.
func (a *app) loadConfig() error {
	path := a.flags.configFile
	explicit := path != ""
	if !explicit {
		dataDir := a.flags.dataDir
		if dataDir == "" {
			dataDir = config.DefaultDataDir()
		}
		path = config.ConfigPath(dataDir)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil && (explicit || !errors.Is(err, config.ErrConfigNotFound)) {
		return err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return err
	}
	if a.flags.dataDir != "" {
		cfg.DataDir = a.flags.dataDir
	}
	if a.flags.debug {
		cfg.LogLevel = "debug"
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return a.openLog()
}

// openLog builds the JSON logger, writing to cfg.LogFile when one is set.
func (a *app) openLog() error {
	var w io.Writer = os.Stderr
	if a.cfg.LogFile != "" {
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		w = f
	}
	a.logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: a.cfg.SlogLevel() == slog.LevelDebug,
		Level:     a.cfg.SlogLevel(),
	})).With("network", a.cfg.Network)
	return nil
}

// closeLog closes the log file, if any. Safe to call more than once.
func (a *app) closeLog() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

func (a *app) call() royalty.Call {
	return royalty.Call{Caller: royalty.Principal(a.flags.caller), Height: a.flags.height}
}

// withLedger opens the ledger database, runs fn and closes the database.
// Transfers emitted by fn are printed afterwards, one line each, followed
// by the payout transaction hex when --payout-tx is set.
func (a *app) withLedger(fn func(l *royalty.Ledger) error) error {
	store, err := royalty.OpenBoltStore(a.cfg.DBPath(), a.cfg.LedgerParams())
	if err != nil {
		return err
	}
	defer store.Close()

	recorder := payout.NewRecorder()
	builder := payout.NewTxBuilder()
	var sink royalty.TransferSink = recorder
	if a.flags.payoutTx {
		sink = builder
	}

	l, err := royalty.NewLedger(royalty.LedgerConfig{
		Store:  store,
		Sink:   sink,
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	for _, t := range recorder.Transfers() {
		a.printTransfer(t)
	}
	for _, p := range builder.Drain() {
		a.printTransfer(p.Transfer)
		fmt.Fprintf(a.out, "payout-tx %d %s\n", p.Transfer.AgreementID, p.Tx.Hex())
	}
	return nil
}

// printTransfer writes "transfer <id> <amount> <from> <to>".
func (a *app) printTransfer(t royalty.Transfer) {
	fmt.Fprintf(a.out, "transfer %d %d %s %s\n", t.AgreementID, t.Amount, t.From, t.To)
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Manage a royalty ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "path to config file")
	flags.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default ~/.royalty)")
	flags.StringVar(&a.flags.caller, "caller", "", "identity of the caller")
	flags.Uint64Var(&a.flags.height, "height", 0, "current block height")
	flags.BoolVarP(&a.flags.debug, "debug", "D", false, "enable debug logging")
	flags.BoolVar(&a.flags.payoutTx, "payout-tx", false, "build an unsigned payout transaction for each distribution")

	rootCmd.AddCommand(initCommand(a))
	rootCmd.AddCommand(paramsCommands(a)...)
	rootCmd.AddCommand(agreementCommands(a)...)
	rootCmd.AddCommand(registryCommands(a)...)
	rootCmd.AddCommand(distributeCommand(a))
	return rootCmd
}

// execute runs the command line and closes the log file even when the
// command fails, since cobra skips post-run hooks on error.
func (a *app) execute(args []string) error {
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if cerr := a.closeLog(); err == nil {
		err = cerr
	}
	return err
}

func main() {
	if err := newApp(os.Stdout).execute(os.Args[1:]); err != nil {
		kind := royalty.KindOf(err)
		if kind != royalty.KindUnknown {
			fmt.Fprintf(os.Stderr, "error (%d %s): %v\n", kind.Code(), kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
