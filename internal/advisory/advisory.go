// Package advisory layers an optional natural-language annotation on top
// of the numeric projection. Callers always get text back: every failure
// is replaced with Fallback.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/0xmhha/blocketa/pkg/types"
)

// Service requests advisories without ever failing observably
type Service struct {
	generator Generator
	config    *Config
	limiter   *rate.Limiter
	group     singleflight.Group
	logger    log.Logger
	recorder  Recorder

	inFlight atomic.Int32
	wg       sync.WaitGroup

	mu     sync.RWMutex
	latest string
}

// New creates a new Service. A nil generator is allowed; every request
// then yields Fallback.
func New(generator Generator, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}

	limit := rate.Inf
	if config.Rate > 0 {
		limit = rate.Limit(config.Rate)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Service{
		generator: generator,
		config:    config,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    log.Root(),
		recorder:  noopRecorder{},
		latest:    Initial,
	}
}

// WithLogger sets the logger
func (s *Service) WithLogger(l log.Logger) *Service {
	s.logger = l
	return s
}

// WithRecorder sets the metrics sink
func (s *Service) WithRecorder(r Recorder) *Service {
	if r == nil {
		r = noopRecorder{}
	}
	s.recorder = r
	return s
}

// Advise returns advisory text for the summary, or Fallback on any failure
func (s *Service) Advise(ctx context.Context, sum types.Summary) string {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	text, err := s.generate(ctx, sum)
	switch {
	case err == nil:
		s.recorder.RecordAdvisory("ok")
	case errors.Is(err, ErrRateLimited):
		s.recorder.RecordAdvisory("rate_limited")
		s.logger.Debug("Advisory request throttled")
		text = Fallback
	default:
		s.recorder.RecordAdvisory("fallback")
		s.logger.Warn("Advisory request failed", "err", err)
		text = Fallback
	}

	s.mu.Lock()
	s.latest = text
	s.mu.Unlock()
	return text
}

// Request runs Advise in the background and hands the text to done.
// It returns immediately. Concurrent requests for the same summary share
// one generator call, made with the first caller's ctx and timeout.
func (s *Service) Request(ctx context.Context, sum types.Summary, done func(string)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		text := s.Advise(ctx, sum)
		if done != nil {
			done(text)
		}
	}()
}

// Wait blocks until all background requests have completed
func (s *Service) Wait() {
	s.wg.Wait()
}

// InFlight reports whether any request is still running
func (s *Service) InFlight() bool {
	return s.inFlight.Load() > 0
}

// Latest returns the most recent advisory text
func (s *Service) Latest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Service) generate(ctx context.Context, sum types.Summary) (string, error) {
	if s.generator == nil {
		return "", ErrNoGenerator
	}

	key := fmt.Sprintf("%d/%.4f/%d/%d", sum.CurrentBlock, sum.AvgBlockTime, sum.TargetBlock, sum.BlocksRemaining)
	v, err, _ := s.group.Do(key, func() (any, error) {
		if !s.limiter.Allow() {
			return "", ErrRateLimited
		}
		return s.call(ctx, BuildPrompt(sum))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Service) call(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	text, err = s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
