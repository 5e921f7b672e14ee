// Package main provides the mlp command line tool: train a feed-forward
// network on MNIST, CSV or synthetic data, or verify its gradients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
)

const version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Fatalf("mlp: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}
	switch args[0] {
	case "train":
		return runTrain(ctx, args[1:], stdout, logger)
	case "gradcheck":
		return runGradcheck(args[1:], stdout, logger)
	case "version":
		fmt.Fprintf(stdout, "mlp %s\n", version)
		return nil
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "mlp - feed-forward neural network trainer")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train a network (see train -h)")
	fmt.Fprintln(w, "  gradcheck  Compare backprop gradients with finite differences")
	fmt.Fprintln(w, "  version    Show version")
}
