// Command lfbench drives growlist.GrowList and bufferedqueue.BufferedQueue
// with a configurable producer/consumer fan-out, times throughput, runs
// the same producer workload against a fixed-capacity baseline ring
// buffer for comparison, and renders the results as a bar chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	lenshood "github.com/LENSHOOD/go-lock-free-ring-buffer"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gsingh-ds/lockfree/bufferedqueue"
	"github.com/gsingh-ds/lockfree/growlist"
)

func main() {
	var (
		producers        = flag.Int("producers", 8, "number of concurrent producer goroutines")
		consumers        = flag.Int("consumers", 4, "number of concurrent consumer goroutines (queue run only)")
		perProducer      = flag.Int("per-producer", 200_000, "items appended/enqueued by each producer")
		initialCapacity  = flag.Int("initial-capacity", 16, "initial GrowList capacity")
		ringCapacity     = flag.Int("ring-capacity", 1<<16, "fixed capacity of the baseline ring buffer")
		outPath          = flag.String("out", "lfbench.html", "path to write the rendered throughput chart to")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lfbench: failed to init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	log := logger.Sugar()
	log.Infow("starting run",
		"producers", *producers,
		"consumers", *consumers,
		"perProducer", *perProducer,
		"initialCapacity", *initialCapacity,
		"ringCapacity", *ringCapacity,
	)

	results := []result{
		runGrowList(log, *producers, *perProducer, *initialCapacity),
		runBufferedQueue(log, *producers, *consumers, *perProducer),
		runBaselineRing(log, *producers, *perProducer, *ringCapacity),
	}

	if err := render(*outPath, results); err != nil {
		log.Errorw("failed to render chart", "error", err)
		os.Exit(1)
	}
	log.Infow("wrote chart", "path", *outPath)
}

type result struct {
	name       string
	elapsed    time.Duration
	totalItems int
}

func (r result) opsPerSec() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.totalItems) / r.elapsed.Seconds()
}

func runGrowList(log *zap.SugaredLogger, producers, perProducer, initialCapacity int) result {
	g := growlist.New[int](initialCapacity)

	start := time.Now()
	var eg errgroup.Group
	for id := 0; id < producers; id++ {
		id := id
		eg.Go(func() error {
			for i := 0; i < perProducer; i++ {
				if _, err := g.Append(id); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Errorw("growlist run failed", "error", err)
	}
	elapsed := time.Since(start)

	log.Infow("growlist done", "count", g.Count(), "capacity", g.Capacity(), "elapsed", elapsed)
	return result{name: "GrowList.Append", elapsed: elapsed, totalItems: producers * perProducer}
}

func runBufferedQueue(log *zap.SugaredLogger, producers, consumers, perProducer int) result {
	q := bufferedqueue.New[int]()
	total := producers * perProducer

	start := time.Now()
	var produce errgroup.Group
	for id := 0; id < producers; id++ {
		id := id
		produce.Go(func() error {
			for i := 0; i < perProducer; i++ {
				q.Enqueue(id)
			}
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	var drained atomic.Int64
	var consume errgroup.Group
	for c := 0; c < consumers; c++ {
		consume.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if _, ok := q.TryDequeue(); ok {
					drained.Add(1)
				}
			}
		})
	}

	_ = produce.Wait()
	// Drain whatever is left after producers finish.
	for drained.Load() < int64(total) {
		if _, ok := q.TryDequeue(); ok {
			drained.Add(1)
		}
	}
	cancel()
	_ = consume.Wait()
	elapsed := time.Since(start)

	log.Infow("bufferedqueue done", "drained", drained.Load(), "elapsed", elapsed)
	return result{name: "BufferedQueue.Enqueue+Dequeue", elapsed: elapsed, totalItems: total}
}

// runBaselineRing drives a fixed-capacity lock-free ring buffer as a
// bounded-capacity comparison point. Unlike GrowList and BufferedQueue it
// can reject an Offer when full, so its throughput number counts only
// accepted items; it shares the chart with the other two, labelled as
// bounded and best-effort, since it is not directly comparable.
func runBaselineRing(log *zap.SugaredLogger, producers, perProducer, capacity int) result {
	rb := lenshood.NewRingBuffer[int](uint64(capacity))

	start := time.Now()
	var accepted atomic.Int64
	var eg errgroup.Group
	for id := 0; id < producers; id++ {
		id := id
		eg.Go(func() error {
			for i := 0; i < perProducer; i++ {
				if rb.Offer(id) {
					accepted.Add(1)
				}
				if _, ok := rb.Poll(); ok {
					// Keep the ring draining so producers don't stall
					// forever against a fixed capacity in this
					// comparison run.
				}
			}
			return nil
		})
	}
	_ = eg.Wait()
	elapsed := time.Since(start)

	log.Infow("baseline ring done", "accepted", accepted.Load(), "elapsed", elapsed)
	return result{name: "LENSHOOD RingBuffer.Offer (bounded, best-effort)", elapsed: elapsed, totalItems: int(accepted.Load())}
}

func render(path string, results []result) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "lockfree container throughput",
			Subtitle: "ops/sec, higher is better",
		}),
	)

	names := make([]string, 0, len(results))
	items := make([]opts.BarData, 0, len(results))
	for _, r := range results {
		names = append(names, r.name)
		items = append(items, opts.BarData{Value: r.opsPerSec()})
	}

	bar.SetXAxis(names).
		AddSeries("ops/sec", items)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lfbench: creating output file: %w", err)
	}
	defer f.Close()

	return bar.Render(f)
}
