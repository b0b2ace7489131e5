package repository

import (
	"time"

	"expired/internal/model"

	"github.com/google/uuid"
)

type changeKind int

const (
	changeInsert changeKind = iota + 1
	changeUpdate
	changeDelete
)

func (k changeKind) String() string {
	switch k {
	case changeInsert:
		return "insert"
	case changeUpdate:
		return "update"
	default:
		return "delete"
	}
}

type pendingChange struct {
	kind    changeKind
	product model.Product
}

// changeSet keeps one pending change per product in registration order.
type changeSet struct {
	order   []uuid.UUID
	changes map[uuid.UUID]pendingChange
	now     func() time.Time
}

func newChangeSet() *changeSet {
	return &changeSet{
		changes: make(map[uuid.UUID]pendingChange),
		now:     time.Now,
	}
}

func (c *changeSet) insert(p *model.Product) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := c.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	kind := changeInsert
	if existing, ok := c.changes[p.ID]; ok && existing.kind != changeInsert {
		// The row is still in storage, so it is overwritten rather than inserted.
		kind = changeUpdate
	}
	c.put(pendingChange{kind: kind, product: *p})
}

func (c *changeSet) update(p *model.Product) {
	p.UpdatedAt = c.now()
	kind := changeUpdate
	if existing, ok := c.changes[p.ID]; ok {
		switch existing.kind {
		case changeInsert:
			// Still unsaved, so the insert just carries the new values.
			kind = changeInsert
		case changeDelete:
			return
		}
	}
	c.put(pendingChange{kind: kind, product: *p})
}

func (c *changeSet) delete(p model.Product) {
	if existing, ok := c.changes[p.ID]; ok && existing.kind == changeInsert {
		c.remove(p.ID)
		return
	}
	c.put(pendingChange{kind: changeDelete, product: p})
}

func (c *changeSet) put(change pendingChange) {
	id := change.product.ID
	if _, ok := c.changes[id]; !ok {
		c.order = append(c.order, id)
	}
	c.changes[id] = change
}

func (c *changeSet) remove(id uuid.UUID) {
	delete(c.changes, id)
	for i, candidate := range c.order {
		if candidate == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *changeSet) empty() bool {
	return len(c.changes) == 0
}

// list returns the pending changes in registration order.
func (c *changeSet) list() []pendingChange {
	out := make([]pendingChange, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.changes[id])
	}
	return out
}

func (c *changeSet) reset() {
	c.order = nil
	c.changes = make(map[uuid.UUID]pendingChange)
}
