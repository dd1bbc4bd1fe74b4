package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidLineKey is returned when a line key cannot be parsed.
var ErrInvalidLineKey = errors.New("invalid line key")

const lineKeySeparator = ":"

// LineKey identifies a cart line. Lines with equal keys are merged.
type LineKey struct {
	ServiceID     string
	GarmentTypeID string
	Quality       QualityTier
}

// String renders the key as serviceId:garmentTypeId:quality.
func (k LineKey) String() string {
	return strings.Join([]string{k.ServiceID, k.GarmentTypeID, string(k.Quality)}, lineKeySeparator)
}

// ParseLineKey is the inverse of LineKey.String.
func ParseLineKey(raw string) (LineKey, error) {
	parts := strings.Split(strings.TrimSpace(raw), lineKeySeparator)
	if len(parts) != 3 {
		return LineKey{}, fmt.Errorf("%w: %q", ErrInvalidLineKey, raw)
	}
	key := LineKey{
		ServiceID:     strings.TrimSpace(parts[0]),
		GarmentTypeID: strings.TrimSpace(parts[1]),
		Quality:       QualityTier(strings.ToLower(strings.TrimSpace(parts[2]))),
	}
	if key.ServiceID == "" || key.GarmentTypeID == "" || !key.Quality.Valid() {
		return LineKey{}, fmt.Errorf("%w: %q", ErrInvalidLineKey, raw)
	}
	return key, nil
}

// LineItem is one service × garment × quality × quantity tuple.
type LineItem struct {
	ServiceID     string
	GarmentTypeID string
	Quality       QualityTier
	Quantity      int
}

// Key returns the merge key of the item.
func (i LineItem) Key() LineKey {
	return LineKey{ServiceID: i.ServiceID, GarmentTypeID: i.GarmentTypeID, Quality: i.Quality}
}

// Validate rejects structurally malformed items. Unknown catalog references are not checked here.
func (i LineItem) Validate() error {
	if strings.TrimSpace(i.ServiceID) == "" {
		return errors.New("serviceId is required")
	}
	if strings.TrimSpace(i.GarmentTypeID) == "" {
		return errors.New("garmentTypeId is required")
	}
	if !i.Quality.Valid() {
		return fmt.Errorf("quality %q is not supported", i.Quality)
	}
	if i.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

// Cart is a user's ordered set of line items. Only normalized keys and quantities are stored.
type Cart struct {
	UserID    string
	Items     []LineItem
	UpdatedAt time.Time
}

// Add merges the item into an existing line with the same key or appends it.
func (c *Cart) Add(item LineItem) {
	key := item.Key()
	for idx := range c.Items {
		if c.Items[idx].Key() == key {
			c.Items[idx].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity updates the line quantity, removing the line when quantity <= 0.
// It reports whether a line with the key exists.
func (c *Cart) SetQuantity(key LineKey, quantity int) bool {
	for idx := range c.Items {
		if c.Items[idx].Key() != key {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		} else {
			c.Items[idx].Quantity = quantity
		}
		return true
	}
	return false
}

// Remove deletes the line with the key. It reports whether a line was removed.
func (c *Cart) Remove(key LineKey) bool {
	return c.SetQuantity(key, 0)
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.Items = nil
}

// CloneItems returns a copy of the line items, suitable for snapshots.
func CloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
