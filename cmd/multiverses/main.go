// Command multiverses runs multiverse analyses from the command line.
//
//	multiverses check analysis.mva   validate and report ids + universe count
//	multiverses run analysis.mva     explore every universe and print the table
//	multiverses repl             interactive session
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	multiverses "github.com/adwasser/multiverses"
)

var (
	logger *zap.Logger

	flagDebug    bool
	flagFormat   string
	flagUniverse int
)

func main() {
	root := &cobra.Command{
		Use:           "multiverses",
		Short:         "Combinatorial multiverse analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger()
		},
	}
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Explore every universe of an analysis and print the result table",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	runCmd.Flags().StringVar(&flagFormat, "format", "table", "output format: table, csv, or yaml")
	runCmd.Flags().IntVar(&flagUniverse, "universe", 0, "explore only the given universe index (1-based)")

	checkCmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate an analysis without executing it",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive multiverse session",
		Args:  cobra.NoArgs,
		RunE:  runRepl,
	}

	root.AddCommand(runCmd, checkCmd, replCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initLogger() error {
	config := zap.NewProductionConfig()
	if flagDebug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	var err error
	logger, err = config.Build()
	return err
}

func enterFile(path string) (*multiverses.Multiverse, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rt := multiverses.NewRuntime()
	return rt.EnterSource(string(src))
}

func runRun(cmd *cobra.Command, args []string) error {
	m, err := enterFile(args[0])
	if err != nil {
		return err
	}
	logger.Debug("analysis compiled",
		zap.Strings("choices", m.ChoiceIDs()),
		zap.Strings("measurements", m.MeasurementIDs()),
		zap.Int("universes", m.Len()))

	if flagUniverse > 0 {
		if err := m.ExploreInto(flagUniverse); err != nil {
			return err
		}
	} else if err := m.ExploreAll(); err != nil {
		return err
	}

	switch flagFormat {
	case "table":
		return m.WriteTable(os.Stdout)
	case "csv":
		return m.WriteCSV(os.Stdout)
	case "yaml":
		return m.EncodeYAML(os.Stdout)
	}
	return fmt.Errorf("unknown format %q", flagFormat)
}

func runCheck(cmd *cobra.Command, args []string) error {
	m, err := enterFile(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("choices:      %v\n", m.ChoiceIDs())
	fmt.Printf("measurements: %v\n", m.MeasurementIDs())
	fmt.Printf("universes:    %d\n", m.Len())
	return nil
}
