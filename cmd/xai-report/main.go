// xai-report renders the XAI analysis report for a request document without
// running the HTTP server.
//
// Usage:
//
//	xai-report -request request.json [-delay 0s] [-json]
//
// Flags:
//
//	-request string  Path to the JSON request document, or - for stdin
//	-delay duration  Simulated analyst latency (default 0s)
//	-json            Print the full JSON response instead of the report text
//
// The request document uses the same fields as POST /analyze:
//
//	{
//	  "prompt": "Analyze the discrepancy",
//	  "groundTruth": {"x1": 0, "y1": 0, "x2": 10, "y2": 10},
//	  "xaiGenerated": {"x1": 5, "y1": 5, "x2": 15, "y2": 15},
//	  "metadata": {"xaiTechnique": "gradcam", "modelArchitecture": "ResNet-50", "dataset": "COCO"},
//	  "images": {"original": "https://example.com/original.png"}
//	}
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go-xai-analyzer/internal/analyst"
	"go-xai-analyzer/internal/analyzer"
	apperrors "go-xai-analyzer/internal/errors"
	"go-xai-analyzer/internal/logger"
	"go-xai-analyzer/internal/report"
	"go-xai-analyzer/internal/service"
	"go-xai-analyzer/pkg/models"
)

const cliSession = "cli"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xai-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	requestPath := fs.String("request", "", "Path to the JSON request document, or - for stdin")
	delay := fs.Duration("delay", 0, "Simulated analyst latency")
	asJSON := fs.Bool("json", false, "Print the full JSON response instead of the report text")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*requestPath) == "" {
		fmt.Fprintln(stderr, "Error: -request is required")
		fs.Usage()
		return 2
	}

	// Keep log lines out of the report output
	logger.SetOutput(stderr)

	doc, err := readDocument(*requestPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	generator := report.NewGenerator(analyzer.NewMetricsCalculator(), analyzer.NewTechniqueAdvisor())
	svc := service.NewAnalysisService(service.Dependencies{
		Analyst:   analyst.NewSimulatedAnalyst(generator, analyst.Options{Delay: *delay}),
		Generator: generator,
	})

	resp, err := svc.Analyze(ctx, cliSession, doc)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
			fmt.Fprintf(stderr, "Error: %s: %s\n", appErr.Message, strings.Join(appErr.Fields, ", "))
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	for _, w := range resp.Warnings {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}
	fmt.Fprintln(stdout, resp.Report.String())
	return 0
}

func readDocument(path string, stdin io.Reader) (models.AnalysisDocument, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.AnalysisDocument{}, fmt.Errorf("could not read request: %w", err)
	}

	var doc models.AnalysisDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.AnalysisDocument{}, fmt.Errorf("could not parse request: %w", err)
	}
	return doc, nil
}
