package bustle

import "time"

// Measurement is the single timing record produced by a run: total
// operations executed, wall-clock time spent in the measured region, and
// the throughput/latency derived from them.
type Measurement struct {
	TotalOps   uint64
	Spent      time.Duration
	Throughput float64 // operations per second
	Latency    time.Duration
}

// aggregate computes a Measurement from the observed elapsed time and the
// run's declared total operations and thread count, per §4.5: throughput
// assumes full parallelism across spent; latency is the per-operation mean
// under that same assumption, computed with integer duration arithmetic to
// match the reference formula spent*threads/total_ops.
func aggregate(totalOps uint64, spent time.Duration, threads int) Measurement {
	m := Measurement{TotalOps: totalOps, Spent: spent}
	if spent > 0 {
		m.Throughput = float64(totalOps) / spent.Seconds()
	}
	if totalOps > 0 {
		m.Latency = spent * time.Duration(threads) / time.Duration(totalOps)
	}
	return m
}
