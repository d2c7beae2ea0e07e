// Package controller holds the watermark form state and turns user edits
// into at most one in-flight watermark request at a time.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/scheduler"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/watermarkapi"
)

const (
	DefaultDebounce      = 300 * time.Millisecond
	DefaultMaxImageBytes = 20 << 20
)

// Outcome is how a submit attempt ended.
type Outcome string

const (
	Dropped   Outcome = "dropped"
	Succeeded Outcome = "succeeded"
	Failed    Outcome = "failed"
)

// State is a snapshot of the form.
type State struct {
	Params       entity.Params
	HasImage     bool
	Processing   bool
	ResultURL    string
	Downloadable bool
}

type Controller struct {
	client        watermarkapi.Client
	view          View
	scheduler     scheduler.Scheduler
	clock         scheduler.Clock
	debounce      time.Duration
	maxImageBytes int64
	log           logrus.FieldLogger

	debouncer *scheduler.Debouncer
	ctx       context.Context
	cancel    context.CancelFunc

	mu           sync.Mutex
	image        string
	imageName    string
	params       entity.Params
	processing   bool
	result       *entity.Result
	downloadable bool
}

type Option func(*Controller)

func WithScheduler(s scheduler.Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

func WithClock(clock scheduler.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

func WithMaxImageBytes(n int64) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxImageBytes = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = l }
}

func WithParams(p entity.Params) Option {
	return func(c *Controller) { c.params = p }
}

// New mounts a controller on view. Close must be called when the view goes away.
func New(client watermarkapi.Client, view View, opts ...Option) *Controller {
	c := &Controller{
		client:        client,
		view:          view,
		scheduler:     scheduler.New(),
		clock:         scheduler.SystemClock(),
		debounce:      DefaultDebounce,
		maxImageBytes: DefaultMaxImageBytes,
		log:           logrus.StandardLogger(),
		params:        entity.DefaultParams(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.debouncer = scheduler.NewDebouncer(c.scheduler, c.debounce)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Close cancels the pending debounced submit and any submit it started.
func (c *Controller) Close() {
	c.debouncer.Cancel()
	c.cancel()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Params:       c.params,
		HasImage:     c.image != "",
		Processing:   c.processing,
		Downloadable: c.downloadable,
	}
	if c.result != nil {
		s.ResultURL = c.result.URL
	}
	return s
}

// MaxImageBytes is the largest image SelectImage accepts.
func (c *Controller) MaxImageBytes() int64 {
	return c.maxImageBytes
}

// Image returns the selected image as a data URL, empty if none.
func (c *Controller) Image() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image
}

// Result returns the last successful result, nil if there is none.
func (c *Controller) Result() *entity.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result == nil {
		return nil
	}
	r := *c.result
	return &r
}
