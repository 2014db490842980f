package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// DefaultQueueName is the durable queue booking events are routed to.
const DefaultQueueName = "conference.events"

// Publisher sends events to RabbitMQ. A connection is dialled per publish;
// booking traffic is low and this keeps the publisher free of reconnect
// state.
type Publisher struct {
    url   string
    queue string
    log   logrus.FieldLogger
    dial  func(url string) (*amqp.Connection, error)
}

// NewPublisher returns a publisher for the broker at url. An empty queue
// name selects DefaultQueueName.
func NewPublisher(url, queue string, log logrus.FieldLogger) *Publisher {
    if queue == "" {
        queue = DefaultQueueName
    }
    if log == nil {
        log = logrus.StandardLogger()
    }
    return &Publisher{url: url, queue: queue, log: log, dial: amqp.Dial}
}

// Publish declares the queue (idempotent) and sends the event as a
// persistent JSON message.  Errors are logged and returned so the caller
// can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
    entry := p.log.WithFields(logrus.Fields{"queue": p.queue, "event": ev.Type})

    body, err := json.Marshal(ev)
    if err != nil {
        entry.WithError(err).Error("rabbitmq: marshal event failed")
        return err
    }

    conn, err := p.dial(p.url)
    if err != nil {
        entry.WithError(err).Warn("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        entry.WithError(err).Warn("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        entry.WithError(err).Warn("rabbitmq: queue declare failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        entry.WithError(err).Warn("rabbitmq: publish failed")
        return err
    }
    return nil
}
