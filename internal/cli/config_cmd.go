package cli

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/PascmdeoMvd/Plataforma/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Muestra o genera la configuración",
	}

	var dir string
	show := &cobra.Command{
		Use:   "show",
		Short: "Muestra la configuración efectiva (config.toml + .env + PANEL_*)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, info, err := loadConfigFrom(dir)
			if err != nil {
				return err
			}
			if info.FileFound {
				printInfo(cmd.OutOrStdout(), "# %s", info.Path)
			} else {
				printInfo(cmd.OutOrStdout(), "# %s no existe, valores por defecto", info.Path)
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Escribe un config.toml con los valores por defecto",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configDir(dir)
			if err != nil {
				return err
			}
			path := filepath.Join(target, "config.toml")
			if _, err := os.Stat(path); err == nil && !force {
				printWarning(cmd.OutOrStdout(), "%s ya existe (use --force para sobrescribir)", path)
				return nil
			}
			if err := config.SaveConfig(config.DefaultConfig(), target); err != nil {
				return wrapf(err, "failed to write %s", path)
			}
			printSuccess(cmd.OutOrStdout(), "Configuración escrita en %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "sobrescribe un config.toml existente")

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "directorio de config.toml (por defecto, el del ejecutable)")
	cmd.AddCommand(show, initCmd)
	return cmd
}

func configDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return config.GetExeDir()
}

func loadConfigFrom(dir string) (*config.AppConfig, config.LoadConfigInfo, error) {
	if dir == "" {
		return config.LoadConfigWithInfo()
	}
	return config.LoadFromDir(dir)
}
