package fetch

import "sync"

// BatchJob is one locator to prefetch into the cache, identified by Key for
// matching against BatchResult.
type BatchJob struct {
	Key     string
	Locator string
}

// BatchResult reports the outcome of prefetching one BatchJob.
type BatchResult struct {
	Key   string
	Path  string
	Error error
}

// Prefetch resolves every job concurrently across workers goroutines and
// returns one BatchResult per job, in no particular order. Meant for batch,
// order-irrelevant prefetching ahead of a resolve pass, never for the
// single-locator fetches the manifest pipeline and build driver need to
// stay sequential.
func (c *Client) Prefetch(jobs []BatchJob, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}

	jobChan := make(chan BatchJob, len(jobs))
	resultChan := make(chan BatchResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				path, err := c.Resolve(job.Locator)
				resultChan <- BatchResult{Key: job.Key, Path: path, Error: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]BatchResult, 0, len(jobs))
	for r := range resultChan {
		results = append(results, r)
	}
	return results
}
