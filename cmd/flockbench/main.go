// Command flockbench exercises a flock.Pool end to end: it recursively
// submits a tree of jobs (each level submitting and waiting on the next),
// runs several independent scenarios concurrently through internal/bench,
// and prints the resulting pool statistics. It is a manual smoke test and
// a worked example, not part of the package's contractual surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/tahsin716/flock"
	"github.com/tahsin716/flock/internal/bench"
)

func main() {
	os.Exit(run())
}

func run() int {
	app := createApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:  "flockbench",
		Usage: "drive a flock re-entrant pool through a recursive workload",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Usage:   "pool concurrency level",
				Value:   4,
			},
			&cli.IntFlag{
				Name:    "fanout",
				Aliases: []string{"f"},
				Usage:   "children each recursive job submits",
				Value:   8,
			},
			&cli.IntFlag{
				Name:    "depth",
				Aliases: []string{"d"},
				Usage:   "recursion depth of the job tree",
				Value:   3,
			},
			&cli.IntFlag{
				Name:    "scenarios",
				Aliases: []string{"s"},
				Usage:   "number of independent scenarios to run concurrently",
				Value:   3,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return runBenchmark(
				uint64(cmd.Int("concurrency")),
				uint64(cmd.Int("fanout")),
				uint64(cmd.Int("depth")),
				uint64(cmd.Int("scenarios")),
			)
		},
	}
}

func runBenchmark(concurrency, fanout, depth, numScenarios uint64) error {
	pool, err := flock.New(concurrency)
	if err != nil {
		return err
	}
	defer pool.Terminate()

	runner := bench.NewRunner(pool, bench.CollectAll)
	for i := uint64(0); i < numScenarios; i++ {
		runner.Go(func(p *flock.Pool) flock.Status {
			return submitTree(p, fanout, depth)
		})
	}

	if err := runner.Wait(); err != nil {
		_, _ = color.New(color.FgRed).Printf("scenarios failed: %v\n", err)
	} else {
		_, _ = color.New(color.FgGreen).Println("all scenarios completed successfully")
	}

	printStats(pool.Stats())
	return nil
}

// submitTree recursively submits fanout children per level, down to
// depth levels, and waits on all of them from inside the submitting
// job — the exact recursive-submission shape the pool's re-entrancy
// exists to support.
func submitTree(pool *flock.Pool, fanout, depth uint64) flock.Status {
	if depth == 0 {
		return flock.OK()
	}

	children := make([]*flock.Future, 0, fanout)
	for i := uint64(0); i < fanout; i++ {
		children = append(children, pool.Submit(func() flock.Status {
			return submitTree(pool, fanout, depth-1)
		}))
	}
	return pool.WaitAll(children)
}

func printStats(stats flock.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	_ = table.Append("Submitted", fmt.Sprintf("%d", stats.Submitted))
	_ = table.Append("Completed", fmt.Sprintf("%d", stats.Completed))
	_ = table.Append("Helped", fmt.Sprintf("%d", stats.Helped))
	_ = table.Append("Failed", fmt.Sprintf("%d", stats.Failed))
	_ = table.Append("Workers", fmt.Sprintf("%d", stats.Workers))
	_ = table.Append("Pending", fmt.Sprintf("%d", stats.Pending))
	_ = table.Render()
}
