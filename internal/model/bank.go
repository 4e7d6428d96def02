package model

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fairlens/ports"
)

// Result is the outcome of training one family. Exactly one of Classifier and
// Err is meaningful.
type Result struct {
	Family     string
	Classifier ports.Classifier
	Duration   time.Duration
	Err        error
}

// TrainAll trains both families concurrently against the same matrix. Each
// family writes into its own slot, so one failing never hides the other's
// result. The returned slice keeps a fixed family order.
func TrainAll(ctx context.Context, cfg Config, features [][]float64, labels []int) []Result {
	classifiers := []ports.Classifier{
		NewLogistic(cfg.Regularization),
		NewForest(cfg.Seed, cfg.TreeCount, cfg.MaxDepth),
	}

	results := make([]Result, len(classifiers))
	var wg sync.WaitGroup
	for i, clf := range classifiers {
		wg.Add(1)
		go func(slot int, clf ports.Classifier) {
			defer wg.Done()
			// A panicking family must not take down the whole run.
			defer func() {
				if r := recover(); r != nil {
					results[slot] = Result{Family: clf.Family(), Err: trainingFailed(clf.Family(), fmt.Errorf("panic: %v", r))}
				}
			}()

			start := time.Now()
			err := clf.Fit(ctx, features, labels)
			duration := time.Since(start)
			if err != nil {
				log.Printf("[ModelBank] ❌ %s failed after %v: %v", clf.Family(), duration, err)
				results[slot] = Result{Family: clf.Family(), Duration: duration, Err: err}
				return
			}
			log.Printf("[ModelBank] ✅ %s trained in %v", clf.Family(), duration)
			results[slot] = Result{Family: clf.Family(), Classifier: clf, Duration: duration}
		}(i, clf)
	}
	wg.Wait()
	return results
}
