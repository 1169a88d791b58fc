package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rflorenc/azure-search-workbench/indexer"
)

// IndexerClient adds run, reset and status to the indexer collection.
type IndexerClient struct {
	*Collection[*indexer.Indexer]
}

// Run starts the indexer. The service answers 202 Accepted.
func (c *IndexerClient) Run(ctx context.Context, name string) error {
	_, err := c.client.Post(ctx, c.itemPath(name)+"/run", nil, http.StatusAccepted)
	return err
}

// Reset clears the indexer's change tracking state. The service answers
// 204 No Content.
func (c *IndexerClient) Reset(ctx context.Context, name string) error {
	_, err := c.client.Post(ctx, c.itemPath(name)+"/reset", nil, http.StatusNoContent)
	return err
}

// Status returns the decoded status payload. indexer.ParseStatus gives a
// typed view of it.
func (c *IndexerClient) Status(ctx context.Context, name string) (map[string]any, error) {
	resp, err := c.client.Get(ctx, c.itemPath(name)+"/status", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return resp.Map()
}

// WaitIdle polls the status every interval until the last run has finished
// or ctx is done. It returns the last status seen.
func (c *IndexerClient) WaitIdle(ctx context.Context, name string, interval time.Duration) (*indexer.Status, error) {
	return c.poll(ctx, name, interval, (*indexer.Status).Idle)
}

// RunAndWait starts the indexer and waits for that run to finish.
func (c *IndexerClient) RunAndWait(ctx context.Context, name string, interval time.Duration) (*indexer.Status, error) {
	prev, err := c.LastStart(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.Run(ctx, name); err != nil {
		return nil, err
	}
	return c.WaitRun(ctx, name, prev, interval)
}

// LastStart returns the start time of the most recent run, or nil if the
// indexer has never run. Pass it to WaitRun after calling Run.
func (c *IndexerClient) LastStart(ctx context.Context, name string) (*time.Time, error) {
	raw, err := c.Status(ctx, name)
	if err != nil {
		return nil, err
	}
	st, err := indexer.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	if st.LastResult == nil {
		return nil, nil
	}
	return st.LastResult.StartTime, nil
}

// WaitRun polls until a run that started after prev has finished. The
// service keeps reporting the previous result for a while after it accepts
// a run, and that result must not count.
func (c *IndexerClient) WaitRun(ctx context.Context, name string, prev *time.Time, interval time.Duration) (*indexer.Status, error) {
	return c.poll(ctx, name, interval, func(st *indexer.Status) bool {
		return st.FinishedAfter(prev)
	})
}

func (c *IndexerClient) poll(ctx context.Context, name string, interval time.Duration, done func(*indexer.Status) bool) (*indexer.Status, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		raw, err := c.Status(ctx, name)
		if err != nil {
			return nil, err
		}
		st, err := indexer.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		if done(st) {
			return st, nil
		}
		if st.LastResult != nil {
			c.logger().Debug("waiting for indexer", "name", name, "status", st.LastResult.Status, "items_processed", st.LastResult.ItemsProcessed)
		}
		select {
		case <-ctx.Done():
			return st, fmt.Errorf("waiting for indexer %q: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}
