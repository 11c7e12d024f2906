package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PascmdeoMvd/Plataforma/internal/config"
	"github.com/PascmdeoMvd/Plataforma/internal/logging"
	"github.com/PascmdeoMvd/Plataforma/internal/server"
	"github.com/PascmdeoMvd/Plataforma/internal/util"
)

type serveOptions struct {
	port      int
	devMode   bool
	dataDir   string
	backend   string
	noBrowser bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Inicia el panel web",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 0, "puerto HTTP (config.toml tiene prioridad si define port)")
	cmd.Flags().BoolVar(&opts.devMode, "dev", false, "modo desarrollo")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directorio de datos (sobrescribe la configuración)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "almacenamiento del progreso: sqlite o json")
	cmd.Flags().BoolVar(&opts.noBrowser, "no-browser", false, "no abrir el navegador")
	return cmd
}

// applyServeFlags 命令行参数覆盖配置
func applyServeFlags(cfg *config.AppConfig, info config.LoadConfigInfo, opts *serveOptions) error {
	if opts.port > 0 && !info.PortSpecified {
		cfg.Server.Port = opts.port
	}
	if opts.devMode {
		cfg.Server.DevMode = true
	}
	if opts.dataDir != "" {
		cfg.Data.DataDir = opts.dataDir
	}
	if opts.backend != "" {
		cfg.Data.Backend = opts.backend
	}
	return config.Validate(cfg)
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	out := cmd.OutOrStdout()
	printHeading(out, "==========================================")
	printHeading(out, "  Panel de coordinación de voluntariado")
	printHeading(out, "==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		return wrapf(err, "failed to load configuration")
	}
	if err := applyServeFlags(cfg, info, opts); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	if !info.PortSpecified && opts.port == 0 {
		if free, err := util.FindAvailablePort(cfg.Server.Port, 20); err == nil {
			cfg.Server.Port = free
		}
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr(), "backend": cfg.Data.Backend}).Info("server listening")
		errCh <- srv.Run()
	}()

	// 打开浏览器
	if !cfg.Server.DevMode && !opts.noBrowser {
		printInfo(out, "Abriendo el navegador: %s", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			printWarning(out, "No se pudo abrir el navegador, visite %s", url)
		}
	} else {
		printInfo(out, "Panel disponible en %s", url)
	}
	printInfo(out, "Ctrl+C para detener...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			_ = srv.Shutdown(context.Background())
			return wrapf(err, "server stopped")
		}
	case <-quit:
	}

	printInfo(out, "Cerrando el panel...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("shutdown did not complete cleanly")
		return err
	}
	printSuccess(out, "Progreso guardado")
	return nil
}
