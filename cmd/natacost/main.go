// NataCost CLI - Construction Cost Control
//
// Usage:
//   natacost report --input project.json [options]
//   natacost evm --input project.json
//   natacost alerts --input project.json
//   natacost serve --port 8080
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"natacare-cost/api"
	"natacare-cost/db/clickhouse"
	"natacare-cost/db/postgres"
	"natacare-cost/internal/alerts"
	"natacare-cost/internal/benchmark"
	"natacare-cost/internal/budget"
	"natacare-cost/internal/costcontrol"
	"natacare-cost/internal/evm"
	"natacare-cost/internal/forecast"
	pkgapi "natacare-cost/pkg/api"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "natacost",
		Usage:   "Construction Cost Control - Earned Value Management for NataCare projects",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"NATACOST_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Usage:   "ClickHouse host (snapshot history; optional)",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "natacare",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "postgres-host",
				Usage:   "PostgreSQL host (alert persistence; optional)",
				EnvVars: []string{"POSTGRES_HOST"},
			},
			&cli.IntFlag{
				Name:    "postgres-port",
				Value:   5432,
				Usage:   "PostgreSQL port",
				EnvVars: []string{"POSTGRES_PORT"},
			},
			&cli.StringFlag{
				Name:    "postgres-database",
				Value:   "natacare",
				Usage:   "PostgreSQL database",
				EnvVars: []string{"POSTGRES_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "postgres-user",
				Value:   "postgres",
				Usage:   "PostgreSQL user",
				EnvVars: []string{"POSTGRES_USER"},
			},
			&cli.StringFlag{
				Name:    "postgres-password",
				Value:   "",
				Usage:   "PostgreSQL password",
				EnvVars: []string{"POSTGRES_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			reportCommand(),
			evmCommand(),
			forecastCommand(),
			alertsCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "Path to project input JSON (WBS lines, finance aggregate, progress)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "table",
			Usage:   "Output format (table, json, markdown)",
		},
	}
}

// =============================================================================
// REPORT COMMAND
// =============================================================================

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Run the full pipeline: EVM metrics, breakdown, forecast, alerts",
		Flags: append(inputFlags(),
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist the snapshot and alerts (requires store flags)",
			},
		),
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	ctx := context.Background()

	input, err := loadInput(c.String("input"))
	if err != nil {
		return err
	}

	log := newLogger(c.String("log-level"))
	service := costcontrol.NewService(benchmark.Default(), log)

	if c.Bool("save") {
		if host := c.String("clickhouse-host"); host != "" {
			store, err := clickhouse.NewStore(&clickhouse.Config{
				Host:     host,
				Port:     c.Int("clickhouse-port"),
				Database: c.String("clickhouse-database"),
				Username: c.String("clickhouse-user"),
				Password: c.String("clickhouse-password"),
			})
			if err != nil {
				return fmt.Errorf("failed to connect to ClickHouse: %w", err)
			}
			defer store.Close()
			service.WithSnapshotStore(store)
		}
		if host := c.String("postgres-host"); host != "" {
			store, err := postgres.NewStore(&postgres.Config{
				Host:     host,
				Port:     c.Int("postgres-port"),
				Database: c.String("postgres-database"),
				Username: c.String("postgres-user"),
				Password: c.String("postgres-password"),
				SSLMode:  "disable",
			})
			if err != nil {
				return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
			}
			defer store.Close()
			service.WithAlertStore(store)
		}
	}

	report, err := service.Run(ctx, input)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	switch c.String("format") {
	case "json":
		return outputJSON(report)
	case "markdown":
		return outputMarkdown(report)
	default:
		return outputTable(report)
	}
}

// =============================================================================
// STAGE COMMANDS
// =============================================================================

func evmCommand() *cli.Command {
	return &cli.Command{
		Name:  "evm",
		Usage: "Compute EVM metrics only",
		Flags: inputFlags(),
		Action: func(c *cli.Context) error {
			input, err := loadInput(c.String("input"))
			if err != nil {
				return err
			}
			metrics := evm.Calculate(input.WBSLines, input.Finance, input.PhysicalProgress)
			if c.String("format") == "json" {
				return printJSON(metrics)
			}
			printMetricsTable(metrics)
			return nil
		},
	}
}

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Compute EVM metrics and the completion forecast",
		Flags: inputFlags(),
		Action: func(c *cli.Context) error {
			input, err := loadInput(c.String("input"))
			if err != nil {
				return err
			}
			metrics := evm.Calculate(input.WBSLines, input.Finance, input.PhysicalProgress)
			fc := forecast.NewGenerator(benchmark.Default()).
				WithProjectType(input.ProjectType).
				Generate(metrics)
			if c.String("format") == "json" {
				return printJSON(fc)
			}
			printForecastTable(fc)
			return nil
		},
	}
}

func alertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "Compute metrics and evaluate alert rules",
		Flags: inputFlags(),
		Action: func(c *cli.Context) error {
			input, err := loadInput(c.String("input"))
			if err != nil {
				return err
			}
			metrics := evm.Calculate(input.WBSLines, input.Finance, input.PhysicalProgress)
			breakdown := budget.Build(input.WBSLines, input.Ledger)
			list := alerts.Generate(metrics, breakdown)
			if c.String("format") == "json" {
				return printJSON(list)
			}
			printAlerts(list)
			return exitOnCritical(metrics, list)
		},
	}
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the cost-control API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP port",
				EnvVars: []string{"PORT"},
			},
		},
		Action: func(c *cli.Context) error {
			log := newLogger(c.String("log-level"))
			table := benchmark.Default()
			service := costcontrol.NewService(table, log)

			config := api.DefaultConfig()
			config.Port = c.Int("port")
			server := api.NewServer(service, table, config, log)

			if host := c.String("clickhouse-host"); host != "" {
				store, err := clickhouse.NewStore(&clickhouse.Config{
					Host:     host,
					Port:     c.Int("clickhouse-port"),
					Database: c.String("clickhouse-database"),
					Username: c.String("clickhouse-user"),
					Password: c.String("clickhouse-password"),
				})
				if err != nil {
					return fmt.Errorf("failed to connect to ClickHouse: %w", err)
				}
				defer store.Close()
				if err := store.EnsureSchema(context.Background()); err != nil {
					return err
				}
				service.WithSnapshotStore(store)
				server.WithSnapshotStore(store)
			}

			if host := c.String("postgres-host"); host != "" {
				store, err := postgres.NewStore(&postgres.Config{
					Host:     host,
					Port:     c.Int("postgres-port"),
					Database: c.String("postgres-database"),
					Username: c.String("postgres-user"),
					Password: c.String("postgres-password"),
					SSLMode:  "disable",
				})
				if err != nil {
					return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
				}
				defer store.Close()
				if err := store.EnsureSchema(context.Background()); err != nil {
					return err
				}
				service.WithAlertStore(store)
				server.WithAlertStore(store)
			}

			return server.StartWithGracefulShutdown()
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func loadInput(path string) (pkgapi.ProjectInput, error) {
	var input pkgapi.ProjectInput
	data, err := os.ReadFile(path)
	if err != nil {
		return input, fmt.Errorf("failed to read input file: %w", err)
	}
	if err := json.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("failed to parse input file: %w", err)
	}
	return input, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// exitOnCritical makes the CLI usable as a CI gate: critical project
// status or any critical alert fails the run.
func exitOnCritical(m pkgapi.EVMMetrics, list []pkgapi.Alert) error {
	critical := m.Status == pkgapi.StatusCritical
	for _, a := range list {
		if a.Severity == pkgapi.SeverityCritical {
			critical = true
		}
	}
	if critical {
		os.Exit(2)
	}
	return nil
}

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputJSON(report *pkgapi.CostReport) error {
	return printJSON(report)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func outputTable(report *pkgapi.CostReport) error {
	printMetricsTable(report.Metrics)
	printForecastTable(report.Forecast)
	printAlerts(report.Alerts)
	return exitOnCritical(report.Metrics, report.Alerts)
}

func printMetricsTable(m pkgapi.EVMMetrics) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                 📐 EARNED VALUE METRICS                       ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Budget at Completion:  $%-37s ║\n", money(m.BAC))
	fmt.Printf("║  Planned Value:         $%-37s ║\n", money(m.PV))
	fmt.Printf("║  Earned Value:          $%-37s ║\n", money(m.EV))
	fmt.Printf("║  Actual Cost:           $%-37s ║\n", money(m.AC))
	fmt.Printf("║  Cost Variance:         $%-37s ║\n", money(m.CV))
	fmt.Printf("║  Schedule Variance:     $%-37s ║\n", money(m.SV))
	fmt.Printf("║  CPI / SPI:             %-38s ║\n", fmt.Sprintf("%.3f / %.3f", m.CPI, m.SPI))
	fmt.Printf("║  EAC / VAC:             %-38s ║\n", fmt.Sprintf("$%s / $%s", money(m.EAC), money(m.VAC)))
	fmt.Printf("║  Complete / Spent:      %-38s ║\n", fmt.Sprintf("%.1f%% / %.1f%%", m.PercentComplete, m.PercentSpent))
	fmt.Printf("║  Status:                %-38s ║\n", statusIcon(m.Status))
	fmt.Printf("║  Health Score:          %-38s ║\n", fmt.Sprintf("%.1f", m.HealthScore))
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
}

func printForecastTable(fc pkgapi.Forecast) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                 🔮 COMPLETION FORECAST                        ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  EAC (CPI method):      $%-37s ║\n", money(fc.EACByCPI))
	fmt.Printf("║  EAC (SPI method):      $%-37s ║\n", money(fc.EACBySPI))
	fmt.Printf("║  EAC (blended):         $%-37s ║\n", money(fc.EACByCPIAndSPI))
	fmt.Printf("║  Selected:              %-38s ║\n", fmt.Sprintf("$%s (%s)", money(fc.SelectedEAC), fc.SelectedMethod))
	fmt.Printf("║  Completion Date:       %-38s ║\n", fc.ForecastCompletionDate.Format("2006-01-02"))
	fmt.Printf("║  Days Remaining:        %-38d ║\n", fc.DaysRemaining)
	fmt.Printf("║  Confidence:            %-38s ║\n", fmt.Sprintf("%.0f%%", fc.ConfidenceLevel))
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
}

func printAlerts(list []pkgapi.Alert) {
	if len(list) == 0 {
		fmt.Println("\n✅ No alerts: all indices and budget lines within tolerance")
		return
	}
	fmt.Printf("\n🚨 %d alert(s):\n", len(list))
	for _, a := range list {
		icon := "⚠️ "
		if a.Severity == pkgapi.SeverityCritical {
			icon = "❌"
		}
		fmt.Printf("  %s [%s] %s\n", icon, a.AlertType, a.Message)
		for _, action := range a.RecommendedActions {
			fmt.Printf("      - %s\n", action)
		}
	}
}

func statusIcon(s pkgapi.ProjectStatus) string {
	switch s {
	case pkgapi.StatusOnTrack:
		return "✅ on track"
	case pkgapi.StatusAtRisk:
		return "⚠️  at risk"
	case pkgapi.StatusOverBudget:
		return "❌ over budget"
	case pkgapi.StatusCritical:
		return "🔥 critical"
	default:
		return string(s)
	}
}

func outputMarkdown(report *pkgapi.CostReport) error {
	m := report.Metrics
	fmt.Println("## 📐 NataCost Project Report")
	fmt.Println()
	fmt.Println("| Metric | Value |")
	fmt.Println("|--------|-------|")
	fmt.Printf("| **BAC** | $%s |\n", money(m.BAC))
	fmt.Printf("| **EV / AC** | $%s / $%s |\n", money(m.EV), money(m.AC))
	fmt.Printf("| **CPI / SPI** | %.3f / %.3f |\n", m.CPI, m.SPI)
	fmt.Printf("| **EAC** | $%s |\n", money(m.EAC))
	fmt.Printf("| **Status** | %s |\n", m.Status)
	fmt.Printf("| **Health Score** | %.1f |\n", m.HealthScore)
	fmt.Printf("| **Forecast EAC** | $%s (%s) |\n", money(report.Forecast.SelectedEAC), report.Forecast.SelectedMethod)
	fmt.Printf("| **Completion** | %s |\n", report.Forecast.ForecastCompletionDate.Format("2006-01-02"))

	if len(report.Breakdown) > 0 {
		fmt.Println()
		fmt.Println("### 📊 Budget vs Actual")
		fmt.Println()
		fmt.Println("| WBS | Budget | Actual | Variance | Status |")
		fmt.Println("|-----|--------|--------|----------|--------|")
		for _, line := range report.Breakdown {
			fmt.Printf("| %s %s | $%s | $%s | %.1f%% | %s |\n",
				line.WBSCode, line.WBSName, money(line.BudgetAmount),
				money(line.ActualAmount), line.VariancePercent, line.Status)
		}
	}

	if len(report.Alerts) > 0 {
		fmt.Println()
		fmt.Println("### 🚨 Alerts")
		fmt.Println()
		for _, a := range report.Alerts {
			fmt.Printf("- **%s** (%s): %s\n", a.AlertType, a.Severity, a.Message)
		}
	}

	return exitOnCritical(report.Metrics, report.Alerts)
}
