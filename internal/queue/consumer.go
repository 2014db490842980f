package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Consumer drains the events queue and appends one line per event to
// <LogDir>/bookings.log.
type Consumer struct {
    URL    string
    Queue  string
    LogDir string
    Log    logrus.FieldLogger
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// until ctx is cancelled.  Broker failures are retried with exponential
// backoff capped at 30s; a message that cannot be handled is rejected
// without requeue so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
    c.defaults()
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.WithError(err).Warnf("events-consumer: dial failed, retrying in %s", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.WithError(err).Warn("events-consumer: consume loop ended, reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) defaults() {
    if c.Queue == "" {
        c.Queue = DefaultQueueName
    }
    if c.LogDir == "" {
        c.LogDir = "logs"
    }
    if c.Log == nil {
        c.Log = logrus.StandardLogger()
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.WithError(err).Warn("events-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.Body); err != nil {
                c.Log.WithError(err).Error("events-consumer: handle message failed")
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends it to the audit log.
func (c *Consumer) Handle(body []byte) error {
    c.defaults()
    var ev Event
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, "bookings.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders an event as a single human-friendly log line.
func FormatLine(ev Event) string {
    var b strings.Builder
    fmt.Fprintf(&b, "[%s] %s | attendee_id=%s", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.AttendeeID)
    if ev.TicketID != 0 {
        fmt.Fprintf(&b, " | ticket_id=%d", ev.TicketID)
    }
    if ev.TicketType != "" {
        fmt.Fprintf(&b, " | ticket_type=%s", ev.TicketType)
    }
    if ev.ReservationID != 0 {
        fmt.Fprintf(&b, " | reservation_id=%d", ev.ReservationID)
    }
    if ev.WorkshopID != "" {
        fmt.Fprintf(&b, " | workshop=%q", ev.WorkshopID)
    }
    if ev.Amount != 0 {
        fmt.Fprintf(&b, " | amount=%.2f AED", ev.Amount)
    }
    b.WriteString("\n")
    return b.String()
}
