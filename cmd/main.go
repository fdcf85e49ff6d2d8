package main

import (
	"context"
	"fmt"
	"fundsim/internal"
	"fundsim/internal/app"
	"fundsim/internal/calculator"
	"fundsim/internal/domain"
	"fundsim/internal/logger"
	"fundsim/internal/util"
	"fundsim/pkg/navcsv"
	"fundsim/pkg/rulejson"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fundsim",
	Short: "simulate rule-driven periodic investment against nav history",
}

var (
	navPath             string
	rulesPath           string
	returnScale         string
	baseAmount          float64
	startDate           string
	endDate             string
	benchmarkPolicy     string
	benchmarkExpression string
	riskFreeRate        float64
	periodsPerYear      int
	enabledMetrics      []string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "run one simulation and print the metrics report",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New()

		scale, err := domain.ParseReturnScale(returnScale)
		if err != nil {
			return err
		}
		history, err := navcsv.LoadFile(navPath, scale)
		if err != nil {
			return err
		}
		ruleSet, err := rulejson.LoadFile(rulesPath)
		if err != nil {
			return err
		}
		benchmark, err := app.BenchmarkPolicyByName(benchmarkPolicy, benchmarkExpression)
		if err != nil {
			return err
		}

		var start, end time.Time
		if startDate != "" {
			if start, err = util.ParseDate(startDate); err != nil {
				return err
			}
		}
		if endDate != "" {
			if end, err = util.ParseDate(endDate); err != nil {
				return err
			}
		}

		handler := app.SimulationHandler{Log: log}
		result, err := handler.Run(app.RunInput{
			History:          history,
			RuleSet:          ruleSet,
			BaseInvestAmount: decimal.NewFromFloat(baseAmount),
			StartDate:        start,
			EndDate:          end,
			Benchmark:        benchmark,
		})
		if err != nil {
			return err
		}

		report, err := calculator.Compute(calculator.ComputeMetricsInput{
			Curve:          result.StrategyCurve,
			Benchmark:      result.BenchmarkCurve,
			RiskFreeRate:   &riskFreeRate,
			PeriodsPerYear: periodsPerYear,
			EnabledMetrics: enabledMetrics,
		})
		if err != nil {
			return err
		}

		log.Infow("simulation finished",
			"runId", result.RunID,
			"days", len(result.Decisions),
			"curvePoints", len(result.StrategyCurve),
		)
		internal.Pprint(report)
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&navPath, "nav", "", "path to nav history csv (date,nav,daily_return)")
	simulateCmd.Flags().StringVar(&rulesPath, "rules", "", "path to rules json")
	simulateCmd.Flags().StringVar(&returnScale, "scale", "percent", "daily_return unit: percent or fraction")
	simulateCmd.Flags().Float64Var(&baseAmount, "base", 100, "base invest amount per buy signal")
	simulateCmd.Flags().StringVar(&startDate, "start", "", "simulation start date (2006-01-02)")
	simulateCmd.Flags().StringVar(&endDate, "end", "", "simulation end date (2006-01-02)")
	simulateCmd.Flags().StringVar(&benchmarkPolicy, "benchmark", "fixed_daily_invest", "benchmark policy")
	simulateCmd.Flags().StringVar(&benchmarkExpression, "benchmark-expression", "", "expression for the expression benchmark policy")
	simulateCmd.Flags().Float64Var(&riskFreeRate, "risk-free", calculator.DefaultRiskFreeRate, "annual risk-free rate")
	simulateCmd.Flags().IntVar(&periodsPerYear, "periods", calculator.DefaultPeriodsPerYear, "trading periods per year")
	simulateCmd.Flags().StringSliceVar(&enabledMetrics, "metrics", nil, "subset of metrics to compute (default all)")

	if err := simulateCmd.MarkFlagRequired("nav"); err != nil {
		panic(err)
	}
	if err := simulateCmd.MarkFlagRequired("rules"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
