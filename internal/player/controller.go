// Package player binds the listening queue to a playback session: it keeps
// the session loaded with the queue's current item, advances on completion
// while play intent holds, and prefetches the next item.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/playback"
	"github.com/lexio-app/lexio/internal/queue"
)

// SkipInterval is how far Forward and Back move.
const SkipInterval = 10 * time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithPrefetch enables synthesizing the next item while the current one
// plays.
func WithPrefetch(on bool) Option {
	return func(c *Controller) { c.prefetch = on }
}

// WithAutoSelect selects the first item whenever items exist but nothing is
// selected.
func WithAutoSelect(on bool) Option {
	return func(c *Controller) { c.autoSelect = on }
}

// Controller coordinates a queue.Store and a playback.Session.
type Controller struct {
	ctx     context.Context
	store   *queue.Store
	session *playback.Session

	prefetch   bool
	autoSelect bool

	unsubscribe func()
	prefetching sync.Map // item id -> struct{}
	wg          sync.WaitGroup
}

// New wires store and session together. ctx bounds every synthesis the
// controller starts.
func New(ctx context.Context, store *queue.Store, session *playback.Session, opts ...Option) *Controller {
	c := &Controller{
		ctx:        ctx,
		store:      store,
		session:    session,
		autoSelect: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.unsubscribe = store.Subscribe(c.onQueueChange)
	session.OnComplete(c.onComplete)
	c.onQueueChange(store.Snapshot())

	return c
}

// Store returns the queue.
func (c *Controller) Store() *queue.Store { return c.store }

// Session returns the playback session.
func (c *Controller) Session() *playback.Session { return c.session }

func (c *Controller) onQueueChange(st queue.State) {
	if c.autoSelect && st.CurrentIndex < 0 && len(st.Items) > 0 {
		// EnsureCurrent notifies again with the new selection.
		c.store.EnsureCurrent()
		return
	}

	cur, ok := st.Current()
	if !ok {
		if _, loaded := c.session.Item(); loaded {
			c.session.Stop()
		}
		if len(st.Items) == 0 {
			c.session.ClearCache()
		}
		return
	}
	if loaded, ok := c.session.Item(); !ok || loaded.ID != cur.ID {
		c.session.Load(cur)
	}
}

func (c *Controller) onComplete(itemID string) {
	log.Debug("Item completed", "item", itemID)
	if !c.store.PlayIntent() {
		return
	}
	if !c.store.Advance() {
		log.Info("Reached end of queue")
		return
	}
	if err := c.start(); err != nil {
		log.Error("Unable to start next item", "error", err)
	}
}

// Play starts or resumes the current item and records play intent.
func (c *Controller) Play() error {
	c.store.EnsureCurrent()
	c.store.SetPlayIntent(true)
	return c.start()
}

func (c *Controller) start() error {
	cur, ok := c.store.Current()
	if !ok {
		c.store.SetPlayIntent(false)
		return playback.ErrNoItem
	}
	c.session.Load(cur)
	if err := c.session.Play(c.ctx); err != nil {
		return err
	}
	c.prefetchNext()
	return nil
}

// Pause pauses playback and drops play intent.
func (c *Controller) Pause() error {
	c.store.SetPlayIntent(false)
	return c.session.Pause()
}

// Toggle pauses while playing, abandons a pending load and plays
// otherwise.
func (c *Controller) Toggle() error {
	switch c.session.Status().State {
	case playback.StatePlaying:
		return c.Pause()
	case playback.StateLoading:
		c.Stop()
		return nil
	default:
		return c.Play()
	}
}

// Stop stops playback and drops play intent.
func (c *Controller) Stop() {
	c.store.SetPlayIntent(false)
	c.session.Stop()
}

// Next moves to the following item, continuing playback if it was
// playing.
func (c *Controller) Next() error {
	return c.step(c.store.Advance)
}

// Previous moves to the preceding item, continuing playback if it was
// playing.
func (c *Controller) Previous() error {
	return c.step(c.store.Retreat)
}

func (c *Controller) step(move func() bool) error {
	wasPlaying := c.store.PlayIntent()
	if !move() {
		// A manual skip at either end keeps the current item going.
		if wasPlaying {
			c.store.SetPlayIntent(true)
		}
		return nil
	}
	if wasPlaying {
		return c.start()
	}
	return nil
}

// JumpTo plays item i.
func (c *Controller) JumpTo(i int) error {
	if err := c.store.PlayFrom(i); err != nil {
		return err
	}
	return c.start()
}

// Forward skips ahead by SkipInterval.
func (c *Controller) Forward() error {
	return c.seek(SkipInterval)
}

// Back skips back by SkipInterval.
func (c *Controller) Back() error {
	return c.seek(-SkipInterval)
}

func (c *Controller) seek(delta time.Duration) error {
	wasPlaying := c.session.Status().State == playback.StatePlaying
	c.session.Seek(delta)
	if wasPlaying {
		return c.session.Play(c.ctx)
	}
	return nil
}

// SetSpeed changes speed. Playback stops and must be started again.
func (c *Controller) SetSpeed(f float64) float64 {
	c.store.SetPlayIntent(false)
	return c.session.SetSpeed(f)
}

// SetVoice changes voice. Playback stops and must be started again.
func (c *Controller) SetVoice(id string) {
	c.store.SetPlayIntent(false)
	c.session.SetVoice(id)
}

func (c *Controller) prefetchNext() {
	if !c.prefetch {
		return
	}
	st := c.store.Snapshot()
	next := st.CurrentIndex + 1
	if next >= len(st.Items) {
		if !st.Repeat || len(st.Items) < 2 {
			return
		}
		next = 0
	}
	item := st.Items[next]
	if _, busy := c.prefetching.LoadOrStore(item.ID, struct{}{}); busy {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.prefetching.Delete(item.ID)
		if err := c.session.Prefetch(c.ctx, item); err != nil {
			log.Warn("Prefetch failed", "item", item.ID, "error", err)
		}
	}()
}

// Wait blocks until background prefetches finish.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close detaches from the queue and stops playback.
func (c *Controller) Close() error {
	c.unsubscribe()
	c.session.Stop()
	c.wg.Wait()
	return nil
}
