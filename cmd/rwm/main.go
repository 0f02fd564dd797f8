// Command rwm runs Random Walk Metropolis chains on a built-in density and
// writes the final position of every chain to a CSV file.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/nozzle/metropolis"
	"github.com/nozzle/metropolis/density"
)

func main() {
	// Defaults may come from RWM_* variables, optionally set in a .env file.
	_ = godotenv.Load()

	// Parse command-line flags
	outputFile := flag.String("output", envString("RWM_OUTPUT", "samples.csv"), "Output CSV file")
	densityName := flag.String("density", envString("RWM_DENSITY", "mixture"),
		"Target density ("+strings.Join(density.Names(), ", ")+")")
	nDims := flag.Int("dims", envInt("RWM_DIMS", 4), "Number of dimensions")
	nSamples := flag.Int("samples", envInt("RWM_SAMPLES", 1000), "Number of samples to take")
	nChains := flag.Int("chains", envInt("RWM_CHAINS", 4), "Number of chains to run")
	stepScale := flag.Float64("step-scale", envFloat("RWM_STEP_SCALE", 0.1), "Proposal standard deviation")
	seed := flag.Uint64("seed", envUint("RWM_SEED", 42), "Random seed")
	workers := flag.Int("workers", envInt("RWM_WORKERS", 0), "Number of workers (0 = all CPUs)")
	verbose := flag.Bool("verbose", envBool("RWM_VERBOSE", false), "Verbose output")
	flag.Parse()

	logpdf, ok := density.Get(*densityName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown density %q\n", *densityName)
		flag.Usage()
		os.Exit(1)
	}

	// Configure the sampler
	config := metropolis.DefaultConfig()
	config.NDims = *nDims
	config.NSamples = *nSamples
	config.NChains = *nChains
	config.StepScale = *stepScale
	config.NumWorkers = *workers
	config.Verbose = *verbose

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Run the chains from the origin
	start := time.Now()
	var initial []float64
	if config.NDims > 0 {
		initial = make([]float64, config.NDims)
	}
	samples, err := metropolis.New(config).Run(ctx, *seed, logpdf, initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sampling: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Sampled in %v\n", time.Since(start))
		if err := printSummary(samples); err != nil {
			fmt.Fprintf(os.Stderr, "Error summarizing: %v\n", err)
		}
	}

	// Save output
	if err := saveCSV(*outputFile, samples); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving output: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Saved samples to %s\n", *outputFile)
	}
}

// printSummary prints the mean and standard deviation of every dimension
// across chains.
func printSummary(samples *mat.Dense) error {
	r, _ := samples.Dims()
	for d := range r {
		row := mat.Row(nil, d, samples)
		mean, err := stats.Mean(row)
		if err != nil {
			return err
		}
		sd, err := stats.StandardDeviation(row)
		if err != nil {
			return err
		}
		fmt.Printf("  dim %d: mean=%.4f sd=%.4f\n", d, mean, sd)
	}
	return nil
}

// saveCSV saves the samples matrix to a CSV file, one row per dimension and
// one column per chain.
func saveCSV(filename string, samples *mat.Dense) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	r, c := samples.Dims()
	record := make([]string, c)
	for i := range r {
		for j := range c {
			record[j] = strconv.FormatFloat(samples.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
