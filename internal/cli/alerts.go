package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/PascmdeoMvd/Plataforma/internal/service/alert"
	"github.com/PascmdeoMvd/Plataforma/internal/service/export"
	"github.com/PascmdeoMvd/Plataforma/internal/service/state"
)

type alertsOptions struct {
	statePath string
	today     string
	threshold int
	csvPath   string
	dir       string
}

func newAlertsCmd() *cobra.Command {
	opts := &alertsOptions{}
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Evalúa las alertas de comunicación de un archivo de progreso",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlerts(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.statePath, "state", "", "archivo progreso_panel.json")
	cmd.Flags().StringVar(&opts.today, "today", "", "fecha de referencia YYYY-MM-DD (por defecto hoy)")
	cmd.Flags().IntVar(&opts.threshold, "threshold", alert.DefaultThresholdDays, "días sin contacto antes de alertar (por defecto alerts.threshold_days de la configuración)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "escribe las alertas en este CSV")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directorio de config.toml (por defecto junto al ejecutable)")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func runAlerts(cmd *cobra.Command, opts *alertsOptions) error {
	threshold := opts.threshold
	if !cmd.Flags().Changed("threshold") {
		cfg, _, err := loadConfigFrom(opts.dir)
		if err != nil {
			return wrapf(err, "failed to load configuration")
		}
		threshold = cfg.Alerts.ThresholdDays
	}
	if threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %d", threshold)
	}
	today := time.Now()
	if opts.today != "" {
		t, err := time.Parse(time.DateOnly, opts.today)
		if err != nil {
			return wrapf(err, "invalid --today")
		}
		today = t
	}

	doc, err := os.ReadFile(opts.statePath)
	if err != nil {
		return wrapf(err, "failed to read %s", opts.statePath)
	}
	ps, err := state.Import(doc)
	if err != nil {
		return err
	}

	res := alert.Evaluate(ps.Assignments, ps.Contacts, today, threshold)
	out := cmd.OutOrStdout()

	printHeading(out, "Alertas al %s (umbral %d días)", res.Today, res.ThresholdDays)
	if res.Status() == "ok" {
		printSuccess(out, "Todas las personas asignadas tienen contacto reciente (%d)", len(res.UpToDate))
	}
	for _, r := range res.Missing {
		printWarning(out, "%s (%s): %s", r.PersonID, r.Sector, r.Label())
	}
	for _, r := range res.Overdue {
		red.Fprintf(out, "✗ %s (%s): %s\n", r.PersonID, r.Sector, r.Label())
	}

	if opts.csvPath != "" {
		f, err := os.Create(opts.csvPath)
		if err != nil {
			return wrapf(err, "failed to create %s", opts.csvPath)
		}
		if err := export.AlertsCSV(f, res.Rows()); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		printInfo(out, "CSV: %s", opts.csvPath)
	}
	return nil
}
