package detection

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/loot-detect-mcp/internal/imaging"
)

// BatchResult is the outcome for one screenshot of a batch.
type BatchResult struct {
	Path       string      `json:"path"`
	Detections []Detection `json:"detections"`
	Error      string      `json:"error,omitempty"`
}

// DefaultWorkers returns the number of physical cores, falling back to the
// logical CPU count when it cannot be determined.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// DetectBatch runs detection on several screenshots concurrently against
// one template library. Results are returned in input order.
//
// Per-screenshot failures are reported in BatchResult.Error with an empty
// detection list, exactly as Detect would return. The only error returned
// is ctx's, when the batch is cancelled.
func (d *Detector) DetectBatch(ctx context.Context, paths []string, templateDir string, threshold float64) ([]BatchResult, error) {
	results := make([]BatchResult, len(paths))
	for i, p := range paths {
		results[i] = BatchResult{Path: p, Detections: []Detection{}}
	}

	lib, err := d.Library(templateDir)
	if err != nil {
		d.log.Warn().Err(err).Msg("batch has no template library")
		for i := range results {
			results[i].Error = err.Error()
		}
		return results, nil
	}
	prepared := d.matcher.Prepare(lib)

	workers := d.cfg.Batch.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			img, err := imaging.Load(path)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			res, err := d.detect(img, prepared, threshold)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			if d.cfg.Debug.Enabled {
				d.writeDebug(path, res)
			}
			results[i].Detections = res.Detections
			return nil
		})
	}
	err = g.Wait()

	d.log.Info().Int("screenshots", len(paths)).Int("workers", workers).Msg("batch complete")
	return results, err
}
