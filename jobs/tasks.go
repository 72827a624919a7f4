package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTreeIntegrity scans the organization forest for structural damage.
	TaskTreeIntegrity = "orgs:tree_integrity"
	// TaskAuditDigest summarises recent audit activity into the log.
	TaskAuditDigest = "audit:digest"
)

// AuditDigestPayload bounds the digest window.
type AuditDigestPayload struct {
	Window time.Duration `json:"window"`
}

// NewTreeIntegrityTask constructs the tree integrity task.
func NewTreeIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskTreeIntegrity, nil)
}

// NewAuditDigestTask constructs an audit digest task.
func NewAuditDigestTask(payload AuditDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditDigest, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueTreeIntegrity enqueues an immediate tree integrity scan.
func (c *Client) EnqueueTreeIntegrity(ctx context.Context) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, NewTreeIntegrityTask(), asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
