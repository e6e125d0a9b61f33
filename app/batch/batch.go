/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/slices"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/tid"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options controls how a batch is processed
type Options struct {
	// Workers is the number of TIDs decoded concurrently. Values below 1 mean 1.
	Workers int
	// Deduplicate decodes inputs that normalize to the same TID only once.
	Deduplicate bool
}

// Item is the outcome of decoding one input of the batch
type Item struct {
	Index      int             `json:"index"`
	Input      string          `json:"input"`
	Descriptor *tid.Descriptor `json:"descriptor,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Stats are the distributions over the successfully decoded items
type Stats struct {
	Vendors map[string]int `json:"vendors" yaml:"vendors"`
	Models  map[string]int `json:"models" yaml:"models"`
	// ImpinjSeries counts Impinj tags by Monza series id, keyed "Series_<n>"
	ImpinjSeries map[string]int `json:"impinjSeries" yaml:"impinj_series"`
}

// Result of a batch. Items are in input order.
type Result struct {
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     []Item        `json:"items"`
	Stats     Stats         `json:"stats"`
}

// Succeeded returns true if the item was decoded
func (item Item) Succeeded() bool {
	return item.Descriptor != nil
}

// SuccessRate returns the percentage of decoded items, 0 for an empty batch
func (result Result) SuccessRate() float64 {
	if result.Total == 0 {
		return 0
	}
	return float64(result.Succeeded) * 100 / float64(result.Total)
}

// Process decodes every TID with a bounded pool of workers. A TID that fails to
// decode is reported in its Item and never aborts the batch; only a cancelled
// context does, in which case ctx.Err() is returned.
func Process(ctx context.Context, tids []string, opts Options) (Result, error) {

	// Metrics
	metrics.GetOrRegisterGauge("TID.Batch.Attempt", nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge("TID.Batch.Success", nil)
	mCancelled := metrics.GetOrRegisterGauge("TID.Batch.Cancelled", nil)
	mItems := metrics.GetOrRegisterGauge("TID.Batch.Items", nil)
	mFailedItems := metrics.GetOrRegisterGauge("TID.Batch.Failed-Items", nil)
	mLatency := metrics.GetOrRegisterTimer("TID.Batch.Latency", nil)

	startTime := time.Now()

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	inputs := tids
	if opts.Deduplicate {
		inputs = slices.RemoveDuplicatesBy(tids, tid.Canonicalize)
	}

	items := make([]Item, len(inputs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, text := range inputs {
		if groupCtx.Err() != nil {
			break
		}
		i, text := i, text
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			items[i] = decode(i, text)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		mCancelled.Update(1)
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		mCancelled.Update(1)
		return Result{}, err
	}

	result := Result{
		Timestamp: startTime,
		Duration:  time.Since(startTime),
		Total:     len(items),
		Items:     items,
		Stats:     computeStats(items),
	}
	for _, item := range items {
		if item.Succeeded() {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	mLatency.Update(result.Duration)
	mItems.Update(int64(result.Total))
	mFailedItems.Update(int64(result.Failed))
	mSuccess.Update(1)

	log.WithFields(log.Fields{
		"Method":    "batch.Process",
		"Workers":   workers,
		"Total":     result.Total,
		"Succeeded": result.Succeeded,
		"Failed":    result.Failed,
		"Duration":  result.Duration.String(),
	}).Debug("Batch processed")

	return result, nil
}

func decode(index int, text string) Item {
	item := Item{Index: index, Input: text}
	descriptor, err := tid.Parse(text)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Descriptor = &descriptor
	return item
}

func computeStats(items []Item) Stats {
	stats := Stats{
		Vendors:      map[string]int{},
		Models:       map[string]int{},
		ImpinjSeries: map[string]int{},
	}
	for _, item := range items {
		if !item.Succeeded() {
			continue
		}
		descriptor := item.Descriptor
		stats.Vendors[descriptor.Vendor]++
		stats.Models[descriptor.Model.Name]++
		if descriptor.IsImpinj() && descriptor.MonzaSeriesID != nil {
			stats.ImpinjSeries[SeriesKey(*descriptor.MonzaSeriesID)]++
		}
	}
	return stats
}

// SeriesKey is the statistics key of a Monza series id
func SeriesKey(seriesID uint8) string {
	return fmt.Sprintf("Series_%d", seriesID)
}
