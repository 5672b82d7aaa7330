package collide

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/gekko3d/collide/broadphase"
	"github.com/gekko3d/collide/debugdraw"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is consulted by the debug wireframe only.
type Camera interface {
	OverlapsFrustum(b shape.AABB) bool
}

type DebugDrawer = debugdraw.Drawer

type entry struct {
	proxy    broadphase.ProxyID
	comp     *PhysicsComponent
	record   *CollisionObject
	category Category
	group    Filter
	mask     Filter
}

// RayHit is one object crossed by a ray test.
type RayHit struct {
	Object   *CollisionObject
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Fraction float32
}

// CollisionWorld owns the broad phase and the active contact listener, and
// runs one discrete detection pass per Update.
type CollisionWorld struct {
	cfg      *Config
	log      Logger
	index    broadphase.Index
	listener ContactListener

	entries   map[broadphase.ProxyID]*entry
	order     []*entry
	nextProxy broadphase.ProxyID

	pass     uint64
	inPass   bool
	pairs    []broadphase.Pair
	contacts []Contact

	drawer      DebugDrawer
	debugActive bool
	debugMode   DebugDrawMode

	profiler *Profiler
	disposed bool
}

func NewCollisionWorld(cfg Config) (*CollisionWorld, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	index, err := broadphase.New(cfg.Broadphase, cfg.CellSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	w := &CollisionWorld{
		cfg:         &cfg,
		log:         cfg.logger(),
		index:       index,
		entries:     make(map[broadphase.ProxyID]*entry),
		nextProxy:   1,
		debugActive: cfg.Debug,
		debugMode:   cfg.DebugMode,
		profiler:    NewProfiler(),
	}
	listener := NewDefaultContactListener()
	listener.Enable()
	w.listener = listener
	w.log.Debugf("collision world created (broadphase=%s)", cfg.Broadphase)
	return w, nil
}

// Config returns a copy of the configuration the world was built with.
func (w *CollisionWorld) Config() Config {
	if w.cfg == nil {
		return Config{}
	}
	return *w.cfg
}

func (w *CollisionWorld) Logger() Logger { return w.log }

// Profiler holds timings and counts of the last pass.
func (w *CollisionWorld) Profiler() *Profiler { return w.profiler }

// Pass is the number of detection passes run so far.
func (w *CollisionWorld) Pass() uint64 { return w.pass }

func (w *CollisionWorld) Len() int { return len(w.order) }

func (w *CollisionWorld) Disposed() bool { return w.disposed }

// RegisterDynamicEntity registers c as belonging to entity. Dynamic objects
// collide with static, dynamic and trigger objects.
func (w *CollisionWorld) RegisterDynamicEntity(c *PhysicsComponent, entity Entity) error {
	return w.register(c, entity, CategoryDynamic)
}

// RegisterStaticGeometry registers non-moving geometry. Static objects are
// only tested against dynamic ones.
func (w *CollisionWorld) RegisterStaticGeometry(c *PhysicsComponent, entity Entity) error {
	return w.register(c, entity, CategoryStatic)
}

// RegisterTriggerEntity registers an overlap-only volume tested against
// dynamic objects.
func (w *CollisionWorld) RegisterTriggerEntity(c *PhysicsComponent, entity Entity) error {
	return w.register(c, entity, CategoryTrigger)
}

// Register dispatches on category.
func (w *CollisionWorld) Register(c *PhysicsComponent, entity Entity, category Category) error {
	return w.register(c, entity, category)
}

func (w *CollisionWorld) register(c *PhysicsComponent, entity Entity, category Category) error {
	switch {
	case w.disposed:
		return ErrWorldDisposed
	case c == nil:
		return fmt.Errorf("%w: nil physics component", ErrConfiguration)
	case entity == nil || entity.Transform() == nil:
		return fmt.Errorf("%w: entity without transform", ErrConfiguration)
	case c.disposed:
		return ErrComponentDisposed
	case c.world == w:
		return ErrAlreadyRegistered
	case c.world != nil:
		return fmt.Errorf("%w: registered in another world", ErrAlreadyRegistered)
	}

	e := &entry{
		proxy:    w.nextProxy,
		comp:     c,
		record:   NewCollisionObject(c.tag, entity),
		category: category,
		group:    category.Group(),
		mask:     category.Mask(),
	}
	w.nextProxy++

	c.world = w
	c.proxy = e.proxy
	c.category = category
	c.record = e.record
	c.acc = correction{}
	c.sync(entity.Transform().Matrix(), entity.Velocity())

	w.entries[e.proxy] = e
	w.order = append(w.order, e)
	w.index.Insert(e.proxy, w.proxyBounds(c))
	w.log.Debugf("registered %s %s (%s) as proxy %d", category, c.tag, c.id, e.proxy)
	return nil
}

// Unregister removes c's handle. It is safe inside a contact callback: pairs
// involving c are skipped for the rest of the pass.
func (w *CollisionWorld) Unregister(c *PhysicsComponent) error {
	if w.disposed {
		return ErrWorldDisposed
	}
	if c == nil || c.world != w {
		return ErrNotRegistered
	}
	e := w.entries[c.proxy]
	delete(w.entries, c.proxy)
	w.order = slices.DeleteFunc(w.order, func(x *entry) bool { return x == e })
	w.index.Remove(c.proxy)
	c.world = nil
	c.record = nil
	w.log.Debugf("unregistered %s (%s) proxy %d", c.tag, c.id, c.proxy)
	return nil
}

// Clear unregisters every object.
func (w *CollisionWorld) Clear() error {
	if w.disposed {
		return ErrWorldDisposed
	}
	w.clear()
	return nil
}

func (w *CollisionWorld) clear() {
	for _, e := range w.order {
		e.comp.world = nil
		e.comp.record = nil
	}
	clear(w.entries)
	w.order = w.order[:0]
	w.index.Clear()
	w.contacts = w.contacts[:0]
}

func (w *CollisionWorld) moved(c *PhysicsComponent) {
	w.index.Update(c.proxy, w.proxyBounds(c))
}

func (w *CollisionWorld) proxyBounds(c *PhysicsComponent) shape.AABB {
	if w.cfg == nil || w.cfg.Margin == 0 {
		return c.bounds
	}
	return c.bounds.Expand(w.cfg.Margin)
}

// RegisteredCollisionObjects returns a snapshot in registration order.
func (w *CollisionWorld) RegisteredCollisionObjects() []*CollisionObject {
	out := make([]*CollisionObject, len(w.order))
	for i, e := range w.order {
		out[i] = e.record
	}
	return out
}

// Update runs exactly one discrete detection pass and, if enabled, draws
// the debug wireframe of it. Callback failures do not stop the pass; they
// are returned joined as *CallbackError values.
func (w *CollisionWorld) Update(cam Camera) error {
	if w.disposed {
		return ErrWorldDisposed
	}
	p := w.profiler

	w.pass++
	w.inPass = true
	defer func() { w.inPass = false }()

	p.BeginScope(ScopeBroadphase)
	w.pairs = w.index.Pairs(w.pairs[:0])
	p.EndScope(ScopeBroadphase)
	p.SetCount(CountObjects, len(w.order))
	p.SetCount(CountPairs, len(w.pairs))

	p.BeginScope(ScopeNarrowphase)
	w.contacts = w.contacts[:0]
	for _, pair := range w.pairs {
		a, b := w.entries[pair.A], w.entries[pair.B]
		if a == nil || b == nil {
			continue
		}
		if !Accepts(a.group, a.mask, b.group, b.mask) {
			continue
		}
		if c, ok := narrowphase(a, b); ok {
			w.contacts = append(w.contacts, c)
		}
	}
	p.EndScope(ScopeNarrowphase)
	p.SetCount(CountContacts, len(w.contacts))

	p.BeginScope(ScopeCallbacks)
	var errs []error
	calls := 0
	contacts := w.contacts
	for i := range contacts {
		// A callback may dispose the world.
		if w.disposed {
			break
		}
		c := &contacts[i]
		// Proxy ids are never reused, so a side unregistered by an earlier
		// callback stays dead even if it was registered again.
		if w.entries[c.proxyA] == nil || w.entries[c.proxyB] == nil {
			continue
		}
		if !w.listener.Enabled() {
			continue
		}
		calls++
		if err := w.dispatch(c); err != nil {
			w.log.Errorf("%v", err)
			errs = append(errs, err)
		}
	}
	p.EndScope(ScopeCallbacks)
	p.SetCount(CountCallbacks, calls)
	p.SetCount(CountFailures, len(errs))
	if w.disposed {
		return errors.Join(errs...)
	}

	if w.debugActive && w.drawer != nil {
		p.BeginScope(ScopeDebugDraw)
		w.drawDebug(cam)
		p.EndScope(ScopeDebugDraw)
	} else {
		p.Scopes[ScopeDebugDraw] = 0
	}
	return errors.Join(errs...)
}

func (w *CollisionWorld) dispatch(c *Contact) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cbErr := &CallbackError{A: c.A, B: c.B, Panic: r}
			if e, ok := r.(error); ok {
				cbErr.Err = e
			}
			err = cbErr
		}
	}()
	if cbErr := w.listener.OnContact(c); cbErr != nil {
		return &CallbackError{A: c.A, B: c.B, Err: cbErr}
	}
	return nil
}

// narrowphase tests every child pair and reports the deepest contact.
func narrowphase(a, b *entry) (Contact, bool) {
	if b.category == CategoryDynamic && a.category != CategoryDynamic {
		a, b = b, a
	}
	var (
		best   shape.Contact
		points int
	)
	for _, pa := range a.comp.posed {
		for _, pb := range b.comp.posed {
			if !pa.Bounds().Overlaps(pb.Bounds()) {
				continue
			}
			c, ok := shape.Collide(pa, pb)
			if !ok {
				continue
			}
			if points == 0 || c.Depth > best.Depth {
				best = c
			}
			points++
		}
	}
	if points == 0 {
		return Contact{}, false
	}
	return Contact{
		A:          a.record,
		B:          b.record,
		ComponentA: a.comp,
		ComponentB: b.comp,
		CategoryA:  a.category,
		CategoryB:  b.category,
		VelocityA:  a.comp.velocity,
		VelocityB:  b.comp.velocity,
		Point:      best.Point,
		Normal:     best.Normal,
		Depth:      best.Depth,
		Points:     points,
		proxyA:     a.proxy,
		proxyB:     b.proxy,
	}, true
}

// Contacts returns the contacts found by the last pass. The slice is reused
// by the next Update.
func (w *CollisionWorld) Contacts() []Contact { return w.contacts }

// SetContactListener disables and disposes the current listener, then
// installs and enables l.
func (w *CollisionWorld) SetContactListener(l ContactListener) error {
	if w.disposed {
		return ErrWorldDisposed
	}
	if l == nil || l.Disposed() {
		return ErrInvalidListener
	}
	if l == w.listener {
		l.Enable()
		return nil
	}
	if w.listener != nil {
		w.listener.Disable()
		w.listener.Dispose()
	}
	w.listener = l
	l.Enable()
	return nil
}

func (w *CollisionWorld) ContactListener() ContactListener { return w.listener }

func (w *CollisionWorld) EnableContactListener() {
	if w.listener != nil {
		w.listener.Enable()
	}
}

func (w *CollisionWorld) DisableContactListener() {
	if w.listener != nil {
		w.listener.Disable()
	}
}

// RayTest returns every filter-matching object crossed by the segment,
// closest first. A zero-length segment hits nothing.
func (w *CollisionWorld) RayTest(start, end mgl32.Vec3, group, mask Filter) []RayHit {
	if w.disposed || end.Sub(start).Len() == 0 {
		return nil
	}
	type candidate struct {
		hit   RayHit
		proxy broadphase.ProxyID
	}
	var found []candidate
	w.index.QuerySegment(start, end, func(id broadphase.ProxyID) {
		e := w.entries[id]
		if e == nil || !Accepts(group, mask, e.group, e.mask) {
			return
		}
		best := RayHit{Fraction: float32(math.Inf(1))}
		for _, p := range e.comp.posed {
			if h, ok := shape.Raycast(p, start, end); ok && h.Fraction < best.Fraction {
				best = RayHit{Object: e.record, Point: h.Point, Normal: h.Normal, Fraction: h.Fraction}
			}
		}
		if best.Object != nil {
			found = append(found, candidate{hit: best, proxy: id})
		}
	})
	slices.SortFunc(found, func(x, y candidate) int {
		switch {
		case x.hit.Fraction < y.hit.Fraction:
			return -1
		case x.hit.Fraction > y.hit.Fraction:
			return 1
		}
		return int(x.proxy) - int(y.proxy)
	})
	hits := make([]RayHit, len(found))
	for i, c := range found {
		hits[i] = c.hit
	}
	return hits
}

// RayTestFirst returns the closest filter-matching object, or nil.
func (w *CollisionWorld) RayTestFirst(start, end mgl32.Vec3, group, mask Filter) *CollisionObject {
	hits := w.RayTest(start, end, group, mask)
	if len(hits) == 0 {
		return nil
	}
	return hits[0].Object
}

// RayTestAll returns every filter-matching object along the segment, closest
// first, or nil when there are none.
func (w *CollisionWorld) RayTestAll(start, end mgl32.Vec3, group, mask Filter) []*CollisionObject {
	hits := w.RayTest(start, end, group, mask)
	if len(hits) == 0 {
		return nil
	}
	out := make([]*CollisionObject, len(hits))
	for i, h := range hits {
		out[i] = h.Object
	}
	return out
}

func (w *CollisionWorld) SetDebugDrawer(d DebugDrawer) { w.drawer = d }

func (w *CollisionWorld) SetDebugDrawMode(mode DebugDrawMode) { w.debugMode = mode }

func (w *CollisionWorld) DebugDrawMode() DebugDrawMode { return w.debugMode }

func (w *CollisionWorld) EnableDebug() { w.debugActive = true }

func (w *CollisionWorld) DisableDebug() { w.debugActive = false }

func (w *CollisionWorld) IsDebugActive() bool { return w.debugActive }

func categoryColor(c Category) debugdraw.Color {
	switch c {
	case CategoryStatic:
		return debugdraw.Green
	case CategoryTrigger:
		return debugdraw.Cyan
	}
	return debugdraw.Yellow
}

func (w *CollisionWorld) drawDebug(cam Camera) {
	for _, e := range w.order {
		if cam != nil && !cam.OverlapsFrustum(e.comp.bounds) {
			continue
		}
		color := categoryColor(e.category)
		if w.debugMode&DebugDrawWireframe != 0 {
			for _, p := range e.comp.posed {
				debugdraw.Posed(w.drawer, p, color)
			}
		}
		if w.debugMode&DebugDrawAABB != 0 {
			debugdraw.AABB(w.drawer, e.comp.bounds, debugdraw.White)
		}
	}
	if w.debugMode&DebugDrawContacts != 0 {
		for _, c := range w.contacts {
			debugdraw.Cross(w.drawer, c.Point, 0.1, debugdraw.Red)
			w.drawer.DrawLine(c.Point, c.Point.Add(c.Normal.Mul(max(c.Depth, 0.25))), debugdraw.Red)
		}
	}
}

// Dispose releases the broad phase and the listener. Registered components
// are detached but not disposed. Safe to call more than once.
func (w *CollisionWorld) Dispose() {
	if w.disposed {
		return
	}
	w.clear()
	if w.listener != nil {
		w.listener.Disable()
		w.listener.Dispose()
	}
	w.listener = nil
	w.index = nil
	w.cfg = nil
	w.pairs = nil
	w.contacts = nil
	w.disposed = true
	w.log.Debugf("collision world disposed after %d passes", w.pass)
}
