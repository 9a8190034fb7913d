// Package main provides the backprop CLI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/backprop/internal/config"
	"github.com/born-ml/backprop/internal/metrics"
	"github.com/born-ml/backprop/internal/network"
	"github.com/born-ml/backprop/internal/serialization"
)

const version = "v0.1.0"

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "backprop %s\n", version)
		return nil
	case "train":
		return runTrain(args[1:], stdout, stderr)
	case "infer":
		return runInfer(args[1:], stdout, stderr)
	case "eval":
		return runEval(args[1:], stdout, stderr)
	case "inspect":
		return runInspect(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return errUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "backprop - feedforward network trainer")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  train      Train a network from a YAML config")
	fmt.Fprintln(w, "  infer      Run one input through a saved network")
	fmt.Fprintln(w, "  eval       Score a saved network on a config's samples")
	fmt.Fprintln(w, "  inspect    Print every unit of a saved network")
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runTrain(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "training config (YAML)")
	out := fs.String("out", "model.bpnn", "where to write the trained network")
	jsonOut := fs.String("json", "", "also write the network as JSON to this path")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *cfgPath == "" {
		fmt.Fprintln(stderr, "train: -config is required")
		return errUsage
	}

	logger := newLogger(stderr, *verbose)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	net, err := cfg.NewNetwork()
	if err != nil {
		return err
	}
	logger.Debug("network built", "sizes", net.Sizes(), "samples", len(cfg.Samples))

	res, err := net.Train(cfg.Inputs(), cfg.Expected(), cfg.TrainConfig(logger))
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	opts := serialization.Options{
		Training: &serialization.TrainingMeta{
			Epochs:       res.Epochs,
			Error:        res.Error,
			Converged:    res.Converged,
			LearningRate: cfg.LearningRate,
			TargetError:  cfg.TargetError,
		},
		Metadata: map[string]string{"config": *cfgPath},
	}
	if err := serialization.Save(*out, net, opts); err != nil {
		return fmt.Errorf("failed to save network: %w", err)
	}
	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, net, opts); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "epochs: %d  error: %g  converged: %t\n", res.Epochs, res.Error, res.Converged)
	fmt.Fprintf(stdout, "saved: %s\n", *out)
	return nil
}

func writeJSON(path string, net *network.Network, opts serialization.Options) error {
	//nolint:gosec // G304: output path comes from the command line
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := serialization.EncodeJSON(f, net, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func runInfer(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelPath := fs.String("model", "model.bpnn", "saved network")
	input := fs.String("input", "", "comma separated input vector")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	vec, err := parseVector(*input)
	if err != nil {
		return err
	}
	net, _, err := serialization.Load(*modelPath)
	if err != nil {
		return err
	}
	out, err := net.Forward(vec)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, formatVector(out))
	return nil
}

func runEval(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "config whose samples are scored")
	modelPath := fs.String("model", "model.bpnn", "saved network")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *cfgPath == "" {
		fmt.Fprintln(stderr, "eval: -config is required")
		return errUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	net, _, err := serialization.Load(*modelPath)
	if err != nil {
		return err
	}
	report, err := metrics.Evaluate(net, cfg.Inputs(), cfg.Expected(), cfg.Threshold)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "samples:  %d\n", report.Samples)
	fmt.Fprintf(stdout, "sse:      %g\n", report.SumSquaredError)
	fmt.Fprintf(stdout, "mse:      %g (std %g)\n", report.MeanSquaredErr, report.StdDevError)
	fmt.Fprintf(stdout, "accuracy: %.2f%%\n", report.Accuracy*100)
	return nil
}

func runInspect(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelPath := fs.String("model", "model.bpnn", "saved network")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	net, header, err := serialization.Load(*modelPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "snapshot: %s\n", header.SnapshotID)
	fmt.Fprintf(stdout, "created:  %s\n", header.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(stdout, "checksum: %s\n", header.Checksum)
	fmt.Fprintf(stdout, "sizes:    %v\n", header.Sizes)
	if t := header.Training; t != nil {
		fmt.Fprintf(stdout, "training: epochs=%d error=%g converged=%t lr=%g target=%g\n",
			t.Epochs, t.Error, t.Converged, t.LearningRate, t.TargetError)
	}
	for l := 0; l < net.NumLayers(); l++ {
		layer, err := net.Layer(l)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "layer %d\n", l)
		for u := range layer {
			fmt.Fprintf(stdout, "  unit %d  activation=%g error=%g weights=%s\n",
				u, layer[u].Activation(), layer[u].Error(), formatVector(layer[u].Weights()))
		}
	}
	return nil
}

func parseVector(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty input vector")
	}
	parts := strings.Split(s, ",")
	vec := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		vec[i] = v
	}
	return vec, nil
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
