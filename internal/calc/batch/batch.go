// Package batch runs many independent sizing cases concurrently.
package batch

import (
	"context"
	"runtime"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/exchanger"
	"golang.org/x/sync/errgroup"
)

// Input is a list of cases. Workers caps concurrency; zero means GOMAXPROCS.
type Input struct {
	Items   []exchanger.Input `json:"items" yaml:"items"`
	Workers int               `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// Item is the outcome of one case. A failed case carries its error and does
// not stop the others.
type Item struct {
	Index  int               `json:"index"`
	Name   string            `json:"name,omitempty"`
	Result *exchanger.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
	Status int               `json:"status"`
	err    error
}

// Err returns the run error for a failed item.
func (it Item) Err() error { return it.err }

type Result struct {
	Results   []Item `json:"results"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// Run sizes every case with calc, or the default calculator when calc is nil.
// Results keep the input order. Only context cancellation aborts the batch.
func Run(ctx context.Context, calc *exchanger.Calculator, in Input) (Result, error) {
	if calc == nil {
		calc = exchanger.Default()
	}
	if len(in.Items) == 0 {
		return Result{}, calcerr.Domain("batch", "no items")
	}
	workers := in.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	items := make([]Item, len(in.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range in.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			it := Item{Index: i, Name: c.Name, Status: 200}
			res, err := calc.Calculate(gctx, c)
			if err != nil {
				it.err = err
				it.Error = err.Error()
				it.Status = exchanger.StatusFor(err)
			} else {
				it.Result = &res
			}
			items[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	out := Result{Results: items}
	for _, it := range items {
		if it.err != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out, nil
}
