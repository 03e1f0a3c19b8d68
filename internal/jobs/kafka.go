package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// KafkaConfig wires the job queue topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Producer submits jobs to the render queue.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects a synchronous producer; each submission is
// acknowledged before the API answers the client.
func NewProducer(cfg KafkaConfig) (*Producer, error) {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll

	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	return &Producer{producer: p, topic: cfg.Topic}, nil
}

// Submit enqueues the job, keyed by the job ID so retries of the same
// order land on the same partition.
func (p *Producer) Submit(job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(job.ID),
		Value: sarama.ByteEncoder(raw),
	})
	if err != nil {
		return fmt.Errorf("submit job %s: %w", job.ID, err)
	}
	return nil
}

// Close shuts the producer down.
func (p *Producer) Close() error {
	return p.producer.Close()
}

// RenderFunc runs one job and returns the path of the finished PDF.
type RenderFunc func(ctx context.Context, job Job) (string, error)

// Worker consumes the job queue and renders.
type Worker struct {
	cfg    KafkaConfig
	store  *Store
	render RenderFunc
	logger zerolog.Logger
}

func NewWorker(cfg KafkaConfig, store *Store, render RenderFunc, logger zerolog.Logger) *Worker {
	return &Worker{cfg: cfg, store: store, render: render, logger: logger}
}

// Run consumes until the context is canceled. Consume errors are
// logged and retried, a poisoned message fails its job and is
// committed.
func (w *Worker) Run(ctx context.Context) error {
	sc := sarama.NewConfig()
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(w.cfg.Brokers, w.cfg.GroupID, sc)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	w.logger.Info().
		Strs("brokers", w.cfg.Brokers).
		Str("topic", w.cfg.Topic).
		Str("group", w.cfg.GroupID).
		Msg("render worker starting")

	handler := &groupHandler{process: w.processOne}
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("render worker shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{w.cfg.Topic}, handler); err != nil {
				w.logger.Error().Err(err).Msg("consumer error")
				time.Sleep(2 * time.Second)
			}
		}
	}
}

func (w *Worker) processOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var job Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		w.logger.Error().Err(err).
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("undecodable job message dropped")
		return nil
	}

	log := w.logger.With().Str("job", job.ID).Logger()

	if err := w.store.SetStatus(ctx, job.ID, StatusRendering, "", ""); err != nil {
		log.Warn().Err(err).Msg("job state missing, rendering anyway")
	}

	start := time.Now()
	out, err := w.render(ctx, job)
	if err != nil {
		log.Error().Err(err).Msg("render failed")
		if serr := w.store.SetStatus(ctx, job.ID, StatusFailed, "", err.Error()); serr != nil {
			log.Error().Err(serr).Msg("failed to record job failure")
		}
		return nil
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Str("output", out).
		Msg("render finished")
	if serr := w.store.SetStatus(ctx, job.ID, StatusDone, out, ""); serr != nil {
		log.Error().Err(serr).Msg("failed to record job completion")
	}
	return nil
}

type messageProcessor func(ctx context.Context, msg *sarama.ConsumerMessage) error

type groupHandler struct {
	process messageProcessor
}

func (h *groupHandler) Setup(s sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(s sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("claim context done: %w", ctx.Err())
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.process(ctx, msg); err != nil {
				return fmt.Errorf("process failed (topic=%s, part=%d, off=%d): %w",
					msg.Topic, msg.Partition, msg.Offset, err)
			}
			sess.MarkMessage(msg, "")
		}
	}
}
