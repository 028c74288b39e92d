// Package lrview drives the interactive views of lrviz: an automaton laid out by
// a live force simulation and a parse tree laid out once per viewport size.
//
// A view is inert until Render and inert again after Dispose. In between, every
// change (a simulation frame, a zoom, a drag, a resize) produces a fresh
// lrtarget.Scene delivered to the OnFrame observers. All methods are safe for
// concurrent use; frames and input are serialized so an observer always sees a
// completely computed frame.
package lrview

import (
	"context"
	"math"
	"sync"

	"cdr.dev/slog"

	"oss.terrastruct.com/lrviz/lib/background"
	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lib/log"
	"oss.terrastruct.com/lrviz/lrtarget"
)

// WHEEL_SENSITIVITY converts wheel pixels to powers of two of zoom.
const WHEEL_SENSITIVITY = 0.002

type View interface {
	// Render creates the engine state for a container of the given size.
	Render(width, height float64)
	// Dispose stops the frame loop and drops every observer. It is idempotent and
	// must not be called from an OnFrame observer.
	Dispose()
	Resize(width, height float64)

	// Scene is the current frame, nil before Render.
	Scene() *lrtarget.Scene
	// OnFrame registers fn for every new frame. fn runs while frames are held
	// back, so it may read the view but must not change it.
	OnFrame(fn func(*lrtarget.Scene)) (cancel func())
	// Step advances the layout by one frame and reports whether anything moved.
	Step() bool
	Settled() bool

	Transform() lrtarget.Transform
	ZoomTo(k, cx, cy float64)
	ZoomBy(factor, cx, cy float64)
	Wheel(x, y, deltaY float64)
	Pan(dx, dy float64)

	// Drag coordinates are in scene space.
	DragStart(id int, x, y float64) bool
	DragMove(id int, x, y float64)
	DragEnd(id int)

	// Pointer coordinates are in screen space.
	NodeAt(x, y float64) (id int, ok bool)
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
}

// engine is what differs between the automaton and the tree view.
// Every method is called with base.mu held.
type engine interface {
	start(vp lrtarget.Viewport)
	// stop discards the engine state and hands back the frame loop, which the
	// caller stops once mu is released.
	stop() *background.Loop
	resized(vp lrtarget.Viewport)
	scene() *lrtarget.Scene
	step() bool
	settled() bool
	nodeAt(p *geo.Point) (int, bool)
	dragStart(id int, x, y float64) bool
	dragMove(id int, x, y float64)
	dragEnd(id int) bool
}

type observer struct {
	id int
	fn func(*lrtarget.Scene)
}

// gesture is the pointer interaction in progress.
type gesture struct {
	drag bool
	id   int
	x, y float64
}

type base struct {
	ctx    context.Context
	cfg    *Config
	kind   lrtarget.Kind
	engine engine

	// emitMu orders frame deliveries and lets Dispose wait for one in flight.
	emitMu sync.Mutex
	mu     sync.Mutex

	rendered     bool
	disposed     bool
	dims         dimensions
	transform    lrtarget.Transform
	observers    []observer
	nextObserver int
	gesture      *gesture
}

func newBase(ctx context.Context, kind lrtarget.Kind, cfg *Config) *base {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &base{
		ctx:       log.Named(ctx, string(kind)),
		cfg:       cfg,
		kind:      kind,
		transform: lrtarget.Identity,
	}
}

func (b *base) live() bool {
	return b.rendered && !b.disposed
}

func (b *base) Render(width, height float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live() {
		return
	}
	b.rendered = true
	b.disposed = false
	b.dims = dimensions{}
	b.dims.observe(width, height)
	b.transform = lrtarget.Identity
	b.gesture = nil

	vp := b.dims.viewport()
	b.engine.start(vp)
	log.Debug(b.ctx, "render", slog.F("width", vp.Width), slog.F("height", vp.Height))
}

func (b *base) Dispose() {
	b.mu.Lock()
	if !b.live() {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	b.observers = nil
	b.gesture = nil
	loop := b.engine.stop()
	b.mu.Unlock()

	loop.Stop()
	// A delivery may have copied the observers before they were dropped.
	b.emitMu.Lock()
	b.emitMu.Unlock()
	log.Debug(b.ctx, "dispose")
}

// update runs fn under the lock and, if it reports a change, delivers the new
// scene to the observers.
func (b *base) update(fn func() bool) bool {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	if !b.live() || !fn() {
		b.mu.Unlock()
		return false
	}
	scene := b.sceneLocked()
	observers := make([]observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.Unlock()

	for _, o := range observers {
		o.fn(scene)
	}
	return true
}

// locked runs fn under the lock without emitting a frame.
func (b *base) locked(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live() {
		fn()
	}
}

func (b *base) sceneLocked() *lrtarget.Scene {
	s := b.engine.scene()
	s.Kind = b.kind
	s.Viewport = b.dims.viewport()
	s.Transform = b.transform
	s.Background = s.Viewport.Background()
	return s
}

func (b *base) Scene() *lrtarget.Scene {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.live() {
		return nil
	}
	return b.sceneLocked()
}

func (b *base) OnFrame(fn func(*lrtarget.Scene)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return func() {}
	}
	id := b.nextObserver
	b.nextObserver++
	b.observers = append(b.observers, observer{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, o := range b.observers {
			if o.id == id {
				b.observers = append(b.observers[:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

func (b *base) Resize(width, height float64) {
	b.update(func() bool {
		if !b.dims.observe(width, height) {
			return false
		}
		vp := b.dims.viewport()
		b.engine.resized(vp)
		log.Debug(b.ctx, "resize", slog.F("width", vp.Width), slog.F("height", vp.Height))
		return true
	})
}

func (b *base) Step() bool {
	return b.update(b.engine.step)
}

func (b *base) Settled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.live() || b.engine.settled()
}

func (b *base) Transform() lrtarget.Transform {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transform
}

func (b *base) setTransform(t lrtarget.Transform) bool {
	if t == b.transform {
		return false
	}
	b.transform = t
	return true
}

func (b *base) ZoomTo(k, cx, cy float64) {
	b.update(func() bool {
		return b.setTransform(b.transform.ZoomTo(k, cx, cy))
	})
}

func (b *base) ZoomBy(factor, cx, cy float64) {
	b.update(func() bool {
		return b.setTransform(b.transform.ZoomBy(factor, cx, cy))
	})
}

// Wheel zooms around the pointer, wheel up zooming in.
func (b *base) Wheel(x, y, deltaY float64) {
	b.ZoomBy(math.Pow(2, -deltaY*WHEEL_SENSITIVITY), x, y)
}

func (b *base) Pan(dx, dy float64) {
	b.update(func() bool {
		return b.setTransform(b.transform.Translate(dx, dy))
	})
}

func (b *base) DragStart(id int, x, y float64) bool {
	return b.update(func() bool {
		return b.engine.dragStart(id, x, y)
	})
}

func (b *base) DragMove(id int, x, y float64) {
	b.locked(func() {
		b.engine.dragMove(id, x, y)
	})
}

func (b *base) DragEnd(id int) {
	b.update(func() bool {
		return b.engine.dragEnd(id)
	})
}

func (b *base) NodeAt(x, y float64) (id int, ok bool) {
	b.locked(func() {
		id, ok = b.engine.nodeAt(b.transform.Invert(geo.NewPoint(x, y)))
	})
	return id, ok
}

// PointerDown starts dragging the node under the pointer, or panning if there
// is none.
func (b *base) PointerDown(x, y float64) {
	b.update(func() bool {
		changed := false
		if g := b.gesture; g != nil && g.drag {
			changed = b.engine.dragEnd(g.id)
		}
		p := b.transform.Invert(geo.NewPoint(x, y))
		if id, ok := b.engine.nodeAt(p); ok && b.engine.dragStart(id, p.X, p.Y) {
			b.gesture = &gesture{drag: true, id: id}
			return true
		}
		b.gesture = &gesture{x: x, y: y}
		return changed
	})
}

func (b *base) PointerMove(x, y float64) {
	b.update(func() bool {
		g := b.gesture
		if g == nil {
			return false
		}
		if g.drag {
			p := b.transform.Invert(geo.NewPoint(x, y))
			b.engine.dragMove(g.id, p.X, p.Y)
			return false
		}
		dx, dy := x-g.x, y-g.y
		g.x, g.y = x, y
		return b.setTransform(b.transform.Translate(dx, dy))
	})
}

func (b *base) PointerUp(x, y float64) {
	b.update(func() bool {
		g := b.gesture
		b.gesture = nil
		if g == nil || !g.drag {
			return false
		}
		return b.engine.dragEnd(g.id)
	})
}
