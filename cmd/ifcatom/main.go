package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emizp/IFCAtom/internal/cli"
	"github.com/emizp/IFCAtom/pkg/log"
)

func main() {
	_ = godotenv.Load()

	logLvl, err := zap.ParseAtomicLevel(os.Getenv("IFCATOM_LOG_LEVEL"))
	if err != nil {
		logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger := log.InitLog(logLvl)
	defer func() { _ = logger.Sync() }()

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	command := NewIFCAtomCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewIFCAtomCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ifcatom [flags] [options]",
		Short: "ifcatom tracks IFC processing jobs and their results.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdUpload())
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdWatch())
	cmd.AddCommand(cli.NewCmdSelect())
	cmd.AddCommand(cli.NewCmdCategory())
	cmd.AddCommand(cli.NewCmdExtract())
	cmd.AddCommand(cli.NewCmdChart())
	cmd.AddCommand(cli.NewCmdGraph())
	cmd.AddCommand(cli.NewCmdDownload())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
