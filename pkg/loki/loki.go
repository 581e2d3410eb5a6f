package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Logger receives pusher-internal errors; the hook that feeds this pusher
// must not log through it again.
type Logger interface {
	Error(msg string, args ...any)
}

type Config struct {

	// Url of the loki push endpoint, e.g. https://example/loki/api/v1/push
	Url string `validate:"required"`

	// BatchMaxSize is the maximum number of log lines sent in one request.
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the maximum time to wait before flushing a batch.
	BatchMaxWait time.Duration `validate:"gte=1"`

	// Labels are attached to every log line.
	Labels map[string]string

	// Username and Password configure optional basic auth.
	Username string
	Password string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 1000
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type LogEntry struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
	Caller  string `json:"caller"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// Pusher batches log entries and ships them to Loki in the background.
type Pusher struct {
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	client    *http.Client
	entries   chan LogEntry
	waitGroup sync.WaitGroup
	batch     [][]string
	logger    Logger
}

func New(ctx context.Context, cfg Config, logger Logger) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pusher{
		config:  cfg,
		ctx:     ctx,
		cancel:  cancel,
		client:  &http.Client{Timeout: 10 * time.Second},
		entries: make(chan LogEntry, cfg.BatchMaxSize),
		batch:   make([][]string, 0, cfg.BatchMaxSize),
		logger:  logger,
	}

	p.waitGroup.Add(1)
	go p.run()
	return p, nil
}

func (p *Pusher) Push(entry LogEntry) error {
	select {
	case p.entries <- entry:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Stop flushes the pending batch and shuts the pusher down.
func (p *Pusher) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

func (p *Pusher) run() {
	defer p.waitGroup.Done()

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	flush := func() {
		if len(p.batch) == 0 {
			return
		}
		if err := p.send(); err != nil {
			p.logger.Error("failed to send logs", "error", err)
		}
		p.batch = p.batch[:0]
	}
	defer flush()

	for {
		select {
		case <-p.ctx.Done():
			return
		case entry := <-p.entries:
			p.batch = append(p.batch, encodeEntry(entry))
			if len(p.batch) >= p.config.BatchMaxSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func encodeEntry(entry LogEntry) []string {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return nil
	}
	return []string{strconv.FormatInt(time.Now().UnixNano(), 10), string(encoded)}
}

func (p *Pusher) send() error {

	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(pushRequest{Streams: []stream{{
		Stream: p.config.Labels,
		Values: p.batch,
	}}})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.config.Url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("received unexpected response code from Loki: %s, body: %s", resp.Status, string(body))
	}

	return nil
}
