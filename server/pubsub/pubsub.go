// Package pubsub fans out data-change events over NATS so every open phone
// refreshes its feed the moment the other one writes. The bus is optional: a
// nil *Bus is a valid no-op bus and SSE consumers fall back to polling.
package pubsub

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "dunyamiz."

// Event announces one mutation on a topic ("notes", "lists", "memories").
type Event struct {
	Topic string `json:"topic"`
	Op    string `json:"op"` // created|updated|deleted
	ID    string `json:"id,omitempty"`
}

type Bus struct {
	conn *nats.Conn
}

// Connect dials NATS. Callers treat a failure as degraded, not fatal.
func Connect(url string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name("bizim-dunyamiz"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: conn}, nil
}

// Publish sends an event. Nil bus and marshal problems are swallowed; a
// missed wakeup only delays the pollers.
func (b *Bus) Publish(ev Event) {
	if b == nil || b.conn == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = b.conn.Publish(subjectPrefix+ev.Topic, data)
}

// Subscribe delivers events on one topic to fn until the returned stop
// function is called. On a nil bus it returns a no-op stop.
func (b *Bus) Subscribe(topic string, fn func(Event)) (func(), error) {
	if b == nil || b.conn == nil {
		return func() {}, nil
	}
	sub, err := b.conn.Subscribe(subjectPrefix+topic, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		fn(ev)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	b.conn.Drain()
}
