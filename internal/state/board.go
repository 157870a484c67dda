package state

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// SlotOrigin and SlotSpacing place the i-th new shape at
	// (SlotOrigin + SlotSpacing*i, SlotOrigin).
	SlotOrigin  float32 = 100
	SlotSpacing float32 = 100
)

type entry struct {
	shape Shape
	stamp stamp
}

// Board is the collection of placed shapes. Local mutations are stamped and
// handed to the hook set with SetOnLocalOp; remote ones come in through Apply.
type Board struct {
	siteID  string
	clock   Clock
	entries []*entry
	index   map[string]*entry
	placed  int
	log     *zap.Logger
	mu      sync.RWMutex

	onLocalOp func(Op)
}

func NewBoard(siteID string, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{
		siteID: siteID,
		index:  make(map[string]*entry),
		log:    log.Named("board"),
	}
}

func (b *Board) SiteID() string { return b.siteID }

// AddShape places a new shape of the named kind. Unknown names are ignored.
func (b *Board) AddShape(name string) (Shape, bool) {
	k, ok := ParseKind(name)
	if !ok {
		b.log.Debug("ignoring unknown shape kind", zap.String("kind", name))
		return Shape{}, false
	}
	return b.Place(k), true
}

// Place adds a shape of kind k at the next free slot.
func (b *Board) Place(k Kind) Shape {
	style := k.Style()
	b.mu.Lock()
	s := Shape{
		ID:    uuid.NewString(),
		Kind:  k,
		Pos:   Point{X: SlotOrigin + SlotSpacing*float32(b.placed), Y: SlotOrigin},
		Size:  style.Size,
		Color: style.Color,
	}
	op := b.stampLocked(OpAddShape, s)
	b.insertLocked(s, stamp{lamport: op.Lamport, site: op.Site})
	b.mu.Unlock()

	b.log.Debug("shape placed", zap.String("id", s.ID), zap.Stringer("kind", k))
	b.emit(op)
	return s
}

// Move sets the anchor of an existing shape. It reports false for unknown IDs.
func (b *Board) Move(id string, pos Point) bool {
	b.mu.Lock()
	e, ok := b.index[id]
	if !ok {
		b.mu.Unlock()
		return false
	}
	e.shape.Pos = pos
	op := b.stampLocked(OpMoveShape, e.shape)
	e.stamp = stamp{lamport: op.Lamport, site: op.Site}
	b.mu.Unlock()

	b.emit(op)
	return true
}

// Apply merges an operation from another site and reports whether the
// board changed.
func (b *Board) Apply(op Op) bool {
	b.clock.Observe(op.Lamport)
	st := stamp{lamport: op.Lamport, site: op.Site}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch op.Type {
	case OpAddShape:
		if _, exists := b.index[op.Shape.ID]; exists || !op.Shape.Kind.Valid() {
			return false
		}
		b.insertLocked(op.Shape, st)
		b.log.Debug("remote shape added", zap.String("id", op.Shape.ID), zap.String("site", op.Site))
		return true
	case OpMoveShape:
		e, ok := b.index[op.Shape.ID]
		if !ok || !st.after(e.stamp) {
			return false
		}
		e.shape.Pos = op.Shape.Pos
		e.stamp = st
		return true
	case OpLoad:
		b.replaceLocked(op.Shapes, st)
		b.log.Info("board replaced by remote load", zap.Int("shapes", len(op.Shapes)), zap.String("site", op.Site))
		return true
	default:
		b.log.Warn("ignoring unknown op", zap.String("type", string(op.Type)))
		return false
	}
}

// Shapes returns the shapes in placement order, bottom first.
func (b *Board) Shapes() []Shape {
	b.mu.RLock()
	defer b.mu.RUnlock()
	shapes := make([]Shape, 0, len(b.entries))
	for _, e := range b.entries {
		shapes = append(shapes, e.shape)
	}
	return shapes
}

func (b *Board) Lookup(id string) (Shape, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.index[id]
	if !ok {
		return Shape{}, false
	}
	return e.shape, true
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// HitTest returns the topmost shape whose outline contains the logical point.
func (b *Board) HitTest(p Point) (Shape, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := len(b.entries) - 1; i >= 0; i-- {
		if s := b.entries[i].shape; s.Geometry().Contains(p) {
			return s, true
		}
	}
	return Shape{}, false
}

// Snapshot returns the current shapes for saving or for a joining peer.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{Version: DocumentVersion, Shapes: b.Shapes(), Lamport: b.clock.Now()}
}

// SetOnLocalOp installs the hook called after every local mutation. The
// hook runs outside the board lock and may be swapped from any goroutine.
func (b *Board) SetOnLocalOp(fn func(Op)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLocalOp = fn
}

// ApplySnapshot replaces the board with one received from a host. Shapes
// placed here that the host does not know are kept and re-emitted as adds,
// so nothing drawn before the connection came up is lost.
func (b *Board) ApplySnapshot(s Snapshot) {
	b.clock.Observe(s.Lamport)
	host := stamp{lamport: s.Lamport}

	b.mu.Lock()
	var local []Shape
	known := make(map[string]struct{}, len(s.Shapes))
	for _, sh := range s.Shapes {
		known[sh.ID] = struct{}{}
	}
	for _, e := range b.entries {
		if _, ok := known[e.shape.ID]; !ok {
			local = append(local, e.shape)
		}
	}
	b.replaceLocked(s.Shapes, host)
	ops := make([]Op, 0, len(local))
	for _, sh := range local {
		op := b.stampLocked(OpAddShape, sh)
		b.insertLocked(sh, stamp{lamport: op.Lamport, site: op.Site})
		ops = append(ops, op)
	}
	b.mu.Unlock()

	b.log.Info("joined board", zap.Int("shapes", len(s.Shapes)), zap.Int("local", len(local)))
	for _, op := range ops {
		b.emit(op)
	}
}

// Restore replaces every shape with the snapshot's and broadcasts the load.
func (b *Board) Restore(s Snapshot) {
	b.mu.Lock()
	op := b.stampLocked(OpLoad, Shape{})
	op.Shapes = append([]Shape(nil), s.Shapes...)
	b.replaceLocked(s.Shapes, stamp{lamport: op.Lamport, site: op.Site})
	b.mu.Unlock()

	b.log.Info("board restored", zap.Int("shapes", len(s.Shapes)))
	b.emit(op)
}

func (b *Board) stampLocked(t OpType, s Shape) Op {
	return Op{Type: t, Shape: s, Lamport: b.clock.Tick(), Site: b.siteID}
}

func (b *Board) insertLocked(s Shape, st stamp) {
	e := &entry{shape: s, stamp: st}
	b.entries = append(b.entries, e)
	b.index[s.ID] = e
	b.placed++
}

func (b *Board) replaceLocked(shapes []Shape, st stamp) {
	b.entries = b.entries[:0]
	b.index = make(map[string]*entry, len(shapes))
	b.placed = 0
	for _, s := range shapes {
		if _, dup := b.index[s.ID]; dup || !s.Kind.Valid() {
			continue
		}
		b.insertLocked(s, st)
	}
}

func (b *Board) emit(op Op) {
	b.mu.RLock()
	fn := b.onLocalOp
	b.mu.RUnlock()
	if fn != nil {
		fn(op)
	}
}
