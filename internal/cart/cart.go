package cart

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/thetechguyfromvietnam/lolibub/internal/menu"
	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

// LineID derives the cart line key for a (category, name) pair. Whitespace
// is normalized on both parts so two visually identical names always map to
// the same line.
func LineID(category, name string) string {
	return normalize(category) + "_" + normalize(name)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Cart holds the in-memory order draft: at most one line per
// (category, name) pair, quantity always ≥ 1. Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines []order.Line
	index map[string]int
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add puts one unit of the item in the cart, incrementing the quantity when
// a line for the same (category, name) already exists.
func (c *Cart) Add(item menu.Item, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := LineID(category, item.Name)
	if i, ok := c.index[id]; ok {
		c.lines[i].Quantity++
		return
	}
	c.index[id] = len(c.lines)
	c.lines = append(c.lines, order.Line{
		ID:       id,
		Name:     item.Name,
		Price:    item.Price,
		Category: category,
		Quantity: 1,
	})
}

// SetQuantity sets a line's quantity. A quantity of zero or less removes the
// line entirely; a zero-quantity line is never retained.
func (c *Cart) SetQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.Remove(id)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[id]; ok {
		c.lines[i].Quantity = quantity
	}
}

// Remove deletes a line. Removing an absent line is a no-op.
func (c *Cart) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ID] = j
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.index = make(map[string]int)
}

// Total returns the sum of price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a snapshot of the cart in insertion order.
func (c *Cart) Lines() []order.Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]order.Line, len(c.lines))
	copy(out, c.lines)
	return out
}
