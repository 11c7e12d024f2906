// Package cli 命令行入口：serve（默认）、alerts、config
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd 创建根命令；不带子命令时启动服务
func NewRootCmd(version string) *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:   "panel",
		Short: "Panel de coordinación de voluntariado",
		Long: `Panel web para organizar inscripciones de voluntariado: filtros por departamento
e interés, asignación por sector, registro de la última comunicación y alertas.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newAlertsCmd(), newConfigCmd())
	return root
}

// Execute 运行命令行
func Execute(version string) error {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return err
	}
	return nil
}

func wrapf(err error, format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), err)
}
