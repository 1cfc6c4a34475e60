// Package eventbus publishes analysis lifecycle events over redis pub/sub.
// The UI layer subscribes to refresh report lists and quota displays without
// polling. Publishing is fire-and-forget: a lost event never fails the
// operation that raised it.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type ReportEvent struct {
	ReportUUID    string `json:"report_uuid,omitempty"`
	CandidateUUID string `json:"candidate_uuid"`
	TenantID      uint   `json:"tenant_id"`
	RiskLevel     string `json:"risk_level,omitempty"`
	Message       string `json:"message,omitempty"`
}

type QuotaEvent struct {
	TenantID  uint   `json:"tenant_id"`
	Operation string `json:"operation"`
	Remaining int    `json:"remaining"`
}

const (
	ChannelReport = "insight:events:report"
	ChannelQuota  = "insight:events:quota"
)

const (
	EventReportCreated  = "report.created"
	EventAnalysisFailed = "analysis.failed"
	EventQuotaConsumed  = "quota.consumed"
	EventQuotaRecharged = "quota.recharged"
)

type Bus struct {
	client redis.UniversalClient
}

func NewBus(client redis.UniversalClient) *Bus {
	return &Bus{client: client}
}

func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}, nil
}

func (b *Bus) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *Bus) Subscribe(ctx context.Context, channels ...string) <-chan *Event {
	sub := b.client.Subscribe(ctx, channels...)
	ch := make(chan *Event, 100)

	go func() {
		defer close(ch)
		for msg := range sub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			ch <- &event
		}
	}()

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	return ch
}
