package notify

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mkravets/reposcout/internal/domain/models"
	"github.com/mkravets/reposcout/internal/logger"
	"github.com/mkravets/reposcout/internal/metrics"
)

// Dispatcher fans a summary out to every requested channel concurrently.
// Channels fail independently; the aggregate result always covers every
// requested channel.
type Dispatcher struct {
	channels    map[string]Channel
	maxRetries  int
	baseDelay   time.Duration
	sendTimeout time.Duration
}

type DispatcherConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	SendTimeout time.Duration
}

func NewDispatcher(channels []Channel, cfg DispatcherConfig) *Dispatcher {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	byName := make(map[string]Channel, len(channels))
	for _, channel := range channels {
		byName[channel.Name()] = channel
	}

	return &Dispatcher{
		channels:    byName,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   cfg.BaseDelay,
		sendTimeout: cfg.SendTimeout,
	}
}

// Dispatch delivers the summary to each named channel and waits for all
// attempts, each bounded by its own timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, summary Summary, channelNames []string) map[string]models.ChannelOutcome {

	outcomes := make(map[string]models.ChannelOutcome, len(channelNames))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range channelNames {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			outcome := d.deliver(ctx, name, summary)
			mu.Lock()
			outcomes[name] = outcome
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	return outcomes
}

func (d *Dispatcher) deliver(ctx context.Context, name string, summary Summary) models.ChannelOutcome {

	channel, found := d.channels[name]
	if !found {
		return models.ChannelOutcome{Channel: name, Message: "channel is not configured"}
	}

	if err := channel.Validate(); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeNotify).
			Errorf("channel %v rejected its config: %v", name, err)
		metrics.NotificationsCounter.WithLabelValues(name, "invalid_config").Inc()
		return models.ChannelOutcome{Channel: name, Message: err.Error()}
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {

		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := channel.Send(sendCtx, summary)
		cancel()

		if err == nil {
			metrics.NotificationsCounter.WithLabelValues(name, "success").Inc()
			return models.ChannelOutcome{Channel: name, Success: true, Attempts: attempt}
		}
		lastErr = err

		if errors.Is(err, ErrInvalidConfig) || !IsTransient(err) {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeNotify).
				Errorf("channel %v failed permanently: %v", name, err)
			metrics.NotificationsCounter.WithLabelValues(name, "failure").Inc()
			return models.ChannelOutcome{Channel: name, Message: err.Error(), Attempts: attempt}
		}

		if attempt < d.maxRetries {
			select {
			case <-time.After(d.baseDelay << (attempt - 1)):
			case <-ctx.Done():
				return models.ChannelOutcome{Channel: name, Message: ctx.Err().Error(), Attempts: attempt}
			}
		}
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeNotify).
		Errorf("channel %v failed after %v attempts: %v", name, d.maxRetries, lastErr)
	metrics.NotificationsCounter.WithLabelValues(name, "failure").Inc()
	return models.ChannelOutcome{Channel: name, Message: lastErr.Error(), Attempts: d.maxRetries}
}
