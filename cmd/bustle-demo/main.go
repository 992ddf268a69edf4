// Command bustle-demo runs the bustlekv concurrent key-value workload
// driver against the in-memory reference collection and prints (or
// CSV-serializes) the resulting measurement. It selects from the same
// named workload presets as the original engine-comparison CLI
// (read-heavy, rapid-grow) but does not reproduce that CLI's multi-engine
// selection or report generation — it exists only to exercise
// pkg/bustle end-to-end.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/exldna/bustlekv/pkg/bustle"
	"github.com/exldna/bustlekv/pkg/logging"
	"github.com/exldna/bustlekv/pkg/refcollection"
)

func main() {
	var (
		workloadName = flag.String("workload", "read-heavy", "workload preset: read-heavy | rapid-grow")
		threads      = flag.Int("threads", 4, "number of worker threads")
		operations   = flag.Float64("operations", 0.75, "operations multiplier applied to initial capacity")
		capLog2      = flag.Uint("cap-log2", 20, "log2 of initial capacity")
		seedHex      = flag.String("seed", "", "32-byte hex seed for deterministic runs (empty draws from entropy)")
		csvOut       = flag.Bool("csv", false, "emit the measurement as CSV instead of text")
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := logging.InfoLevel
	if *verbose {
		level = logging.DebugLevel
	}
	log := logging.NewLogger(&logging.Config{Level: level, Output: os.Stderr}).WithComponent("bustle-demo")

	mix, err := presetMix(*workloadName)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	w := bustle.NewWorkload[uint64](*threads, mix).
		InitialCapacityLog2(uint8(*capLog2)).
		Operations(*operations)

	if *seedHex != "" {
		seed, err := parseSeed(*seedHex)
		if err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		w = w.Seed(seed)
	}

	factory := refcollection.NewCollectionFactory[uint64](refcollection.Uint64KeyBytes)
	identity := func(seed uint64) uint64 { return seed }

	measurement, err := w.RunSilently(context.Background(), factory, identity, bustle.WithLogger(log))
	if err != nil {
		log.Error(fmt.Sprintf("run failed: %v", err))
		os.Exit(1)
	}

	if *csvOut {
		writeCSV(measurement)
		return
	}
	printText(measurement)
}

func presetMix(name string) (bustle.Mix, error) {
	switch name {
	case "read-heavy":
		return bustle.Mix{Read: 95, Insert: 5}, nil
	case "rapid-grow":
		return bustle.Mix{Read: 5, Insert: 95}, nil
	default:
		return bustle.Mix{}, fmt.Errorf("unknown workload preset %q (want read-heavy or rapid-grow)", name)
	}
}

func parseSeed(hexSeed string) ([32]byte, error) {
	var seed [32]byte
	if len(hexSeed) != 64 {
		return seed, fmt.Errorf("seed must be 64 hex characters (32 bytes), got %d", len(hexSeed))
	}
	for i := 0; i < 32; i++ {
		b, err := strconv.ParseUint(hexSeed[i*2:i*2+2], 16, 8)
		if err != nil {
			return seed, fmt.Errorf("invalid seed byte at position %d: %w", i, err)
		}
		seed[i] = byte(b)
	}
	return seed, nil
}

func printText(m bustle.Measurement) {
	fmt.Printf("total_ops   %d\n", m.TotalOps)
	fmt.Printf("spent       %s\n", m.Spent)
	fmt.Printf("throughput  %.2f ops/sec\n", m.Throughput)
	fmt.Printf("latency     %s\n", m.Latency)
}

func writeCSV(m bustle.Measurement) {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	w.Write([]string{"total_ops", "spent_ns", "throughput_ops_per_sec", "latency_ns"})
	w.Write([]string{
		strconv.FormatUint(m.TotalOps, 10),
		strconv.FormatInt(int64(m.Spent), 10),
		strconv.FormatFloat(m.Throughput, 'f', 2, 64),
		strconv.FormatInt(int64(m.Latency), 10),
	})
}
