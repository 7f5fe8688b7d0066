package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
)

var ErrLineNotFound = fmt.Errorf("cart line %w", apperr.ErrNotFound)

// Snapshot is the copy of a product kept on a cart line.
type Snapshot struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	Image string          `json:"image,omitempty"`
}

func (s Snapshot) equal(o Snapshot) bool {
	return s.ID == o.ID && s.Name == o.Name && s.Price.Equal(o.Price) && s.Stock == o.Stock && s.Image == o.Image
}

type Line struct {
	Product  Snapshot `json:"product"`
	Quantity int      `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice tells the shopper what a cart operation did.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Title   string      `json:"title"`
	Message string      `json:"message,omitempty"`
}

func outOfStock(p Snapshot) *Notice {
	return &Notice{Level: NoticeError, Title: "Out of Stock", Message: fmt.Sprintf("%s is currently out of stock.", p.Name)}
}

func stockLimit(p Snapshot) *Notice {
	return &Notice{Level: NoticeWarning, Title: "Stock limit reached", Message: fmt.Sprintf("You can only add up to %d of %s.", p.Stock, p.Name)}
}

func added(p Snapshot) *Notice {
	return &Notice{Level: NoticeInfo, Title: "Added to cart", Message: fmt.Sprintf("%s has been added to your cart.", p.Name)}
}

func removed() *Notice {
	return &Notice{Level: NoticeInfo, Title: "Removed from cart"}
}

// Cart is a shopper's ordered list of lines, at most one per product.
type Cart struct {
	Lines []Line
}

func (c *Cart) index(productID string) int {
	for i, l := range c.Lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Get(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Add puts qty units of p in the cart, never exceeding p.Stock.
func (c *Cart) Add(p Snapshot, qty int) *Notice {
	if qty < 1 {
		qty = 1
	}
	if p.Stock <= 0 {
		return outOfStock(p)
	}

	if i := c.index(p.ID); i >= 0 {
		c.Lines[i].Product = p
		next := c.Lines[i].Quantity + qty
		if next > p.Stock {
			c.Lines[i].Quantity = p.Stock
			return stockLimit(p)
		}
		c.Lines[i].Quantity = next
		return nil
	}

	if qty > p.Stock {
		c.Lines = append(c.Lines, Line{Product: p, Quantity: p.Stock})
		return stockLimit(p)
	}
	c.Lines = append(c.Lines, Line{Product: p, Quantity: qty})
	return added(p)
}

// SetQuantity replaces the quantity of an existing line. The stock check runs
// before the removal check, so a request above stock is clamped first.
func (c *Cart) SetQuantity(p Snapshot, qty int) (*Notice, error) {
	i := c.index(p.ID)
	if i < 0 {
		return nil, ErrLineNotFound
	}
	c.Lines[i].Product = p

	if qty > p.Stock {
		if p.Stock <= 0 {
			c.removeAt(i)
			return outOfStock(p), nil
		}
		c.Lines[i].Quantity = p.Stock
		return stockLimit(p), nil
	}
	if qty <= 0 {
		c.removeAt(i)
		return removed(), nil
	}
	c.Lines[i].Quantity = qty
	return nil, nil
}

func (c *Cart) Remove(productID string) *Notice {
	if i := c.index(productID); i >= 0 {
		c.removeAt(i)
	}
	return removed()
}

// Refresh replaces the snapshot of p's line and clamps its quantity to the
// current stock. It reports whether the line changed.
func (c *Cart) Refresh(p Snapshot) bool {
	i := c.index(p.ID)
	if i < 0 {
		return false
	}
	changed := !c.Lines[i].Product.equal(p)
	c.Lines[i].Product = p
	if c.Lines[i].Quantity > p.Stock {
		changed = true
		if p.Stock <= 0 {
			c.removeAt(i)
			return true
		}
		c.Lines[i].Quantity = p.Stock
	}
	return changed
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
