// Package admincap models admin authority as a single transferable
// capability: exactly one holder at a time, checked on every admin-gated
// operation, with transfer clearing the previous holder.
package admincap

import (
	"errors"

	"whirlpool/crypto"
)

// ErrNullRecipient is returned by Transfer when asked to hand the capability
// to the zero address.
var ErrNullRecipient = errors.New("admincap: recipient must not be the null address")

// ErrNotHolder is returned by Authorize when the caller does not hold the
// capability.
var ErrNotHolder = errors.New("admincap: caller does not hold the admin capability")

// Cap is the admin capability singleton. Its zero value holds no one (every
// Authorize call fails); New creates a held capability at genesis.
type Cap struct {
	holder crypto.Address
	set    bool
}

// New creates the capability, owned by holder.
func New(holder crypto.Address) *Cap {
	return &Cap{holder: holder, set: true}
}

// Holder returns the current holder address.
func (c *Cap) Holder() crypto.Address {
	return c.holder
}

// Authorize fails unless caller currently holds the capability.
func (c *Cap) Authorize(caller crypto.Address) error {
	if c == nil || !c.set || c.holder != caller {
		return ErrNotHolder
	}
	return nil
}

// Transfer moves the capability to newHolder, clearing the prior holder.
// newHolder must not be the null address.
func (c *Cap) Transfer(caller, newHolder crypto.Address) error {
	if err := c.Authorize(caller); err != nil {
		return err
	}
	if newHolder.IsZero() {
		return ErrNullRecipient
	}
	c.holder = newHolder
	return nil
}
