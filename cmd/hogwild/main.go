// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// hogwild solves a box-constrained quadratic program with parallel
// stochastic coordinate descent.
//
// Usage:
//
//	hogwild [flags] <input-dir> <output-path>
//
// The input directory must hold q.txt, p.txt, lb.txt, ub.txt and x0.txt
// (optionally diag.txt to override the diagonal); see package bqpio for the
// file format. The result vector is written to the output path and the final
// residual ‖Qx+p‖₂ is printed to stdout.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/hogwild/bqp/bqpio"
	"github.com/gomlx/hogwild/solver"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// parseArgs validates the positional arguments: exactly an input directory
// and an output path. A usage error here aborts the run before any input is
// read or any solve work starts.
func parseArgs(args []string) (inputDir, outputPath string, err error) {
	if len(args) != 2 {
		return "", "", errors.Errorf(
			"expected exactly 2 positional arguments (input directory and output path), got %d", len(args))
	}
	return args[0], args[1], nil
}

var (
	flagEpochs = flag.Int("epochs", solver.DefaultEpochs, "Number of full coordinate sweeps to run.")
	flagSync   = flag.Int("sync", solver.DefaultSyncInterval,
		"Reconciliation interval: replicas are averaged every this many epochs.")
	flagReplicas = flag.Int("replicas", 0,
		"Number of iterate replicas. 0 derives the count from the machine's NUMA domains.")
	flagWorkers = flag.Int("workers", 0,
		"Sweep workers per replica. 0 divides the available CPUs among the replicas.")
	flagSeed = flag.Int64("seed", 0,
		"Seed for the coordinate permutation. 0 picks a time-based seed.")
	flagPerEpochPerm = flag.Bool("per_epoch_permutation", false,
		"Redraw the coordinate permutation every epoch instead of once per solve. "+
			"Non-default variant; convergence behavior may differ.")
	flagProgress = flag.Bool("progress", true, "Display an epoch progress bar.")
)

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input-dir> <output-path>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	inputDir, outputPath, err := parseArgs(flag.Args())
	if err != nil {
		flag.Usage()
		klog.Errorf("%v. See '%s -help'.", err, os.Args[0])
		os.Exit(1)
	}

	prob, initial := must.M2(bqpio.ReadProblem(inputDir))
	klog.V(1).Infof("Loaded %s-dimensional problem from %q", humanize.Comma(int64(prob.Dim())), inputDir)

	cfg := solver.Config{
		Epochs:              *flagEpochs,
		SyncInterval:        *flagSync,
		Replicas:            *flagReplicas,
		Workers:             *flagWorkers,
		Seed:                *flagSeed,
		PermutationPerEpoch: *flagPerEpochPerm,
	}
	var bar *progressbar.ProgressBar
	if *flagProgress {
		bar = progressbar.NewOptions(*flagEpochs,
			progressbar.OptionSetDescription("Solving"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
		cfg.EpochCallback = func(epoch int) { _ = bar.Add(1) }
	}

	s := must.M1(solver.New(prob, cfg))
	effective := s.Config()
	klog.V(1).Infof("Solving with %d replicas × %d workers", effective.Replicas, effective.Workers)

	start := time.Now()
	result := must.M1(s.Solve(initial))
	elapsed := time.Since(start)
	if bar != nil {
		_ = bar.Finish()
	}

	must.M(bqpio.WriteVector(outputPath, result.X))
	fmt.Printf("residual=%g\n", result.Residual)
	klog.V(1).Infof("Solved %s coordinates × %d epochs in %s, result written to %q",
		humanize.Comma(int64(prob.Dim())), effective.Epochs, elapsed.Round(time.Millisecond), outputPath)
}
