package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStockAlerts = "jobs:stock_alerts"

	// LowStockHash caches the latest alert per product for dashboard reads.
	LowStockHash = "alerts:lowstock"
)

// StockAlert is emitted when an order placement drops a product to or below
// its minimum stock level.
type StockAlert struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockAlert pushes a low-stock alert job to Redis.
func (d *Dispatcher) EnqueueStockAlert(ctx context.Context, alert StockAlert) error {
	return d.enqueue(ctx, QueueStockAlerts, "stock_alert", alert)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the alert queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueStockAlerts).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal job")
		return
	}

	switch job.Type {
	case "stock_alert":
		var alert StockAlert
		if err := json.Unmarshal(job.Payload, &alert); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal stock alert")
			return
		}
		handleStockAlert(ctx, rdb, alert)
	default:
		log.Warn().Str("type", job.Type).Msg("unknown job type")
	}
}

// handleStockAlert logs the alert and caches the latest state per product so
// dashboards can read the alert set without scanning the catalog.
func handleStockAlert(ctx context.Context, rdb *redis.Client, alert StockAlert) {
	log.Warn().
		Str("product_id", alert.ProductID).
		Str("product", alert.Name).
		Int("quantity", alert.Quantity).
		Int("min_stock_level", alert.MinStockLevel).
		Msg("low stock alert")

	data, err := json.Marshal(alert)
	if err != nil {
		return
	}
	if err := rdb.HSet(ctx, LowStockHash, alert.ProductID, data).Err(); err != nil {
		log.Error().Err(err).Msg("failed to cache stock alert")
	}
}
