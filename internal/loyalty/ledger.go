// Package loyalty mutates customer point balances and re-derives tiers.
//
// Award and reversal are deliberately not idempotent: the orchestrating
// service must call each exactly once per order lifecycle event.
package loyalty

import (
	"math"

	"retail-orders/internal/models"
)

// AwardPoints credits one point per whole currency unit actually paid and
// re-derives the customer's tier from the new balance.
func AwardPoints(c *models.Customer, amountPaid float64) {
	c.LoyaltyPoints += int(math.Floor(amountPaid))
	c.LoyaltyTier = models.TierForPoints(c.LoyaltyPoints)
}

// ReversePoints debits one point per whole currency unit refunded,
// clamped at zero, and re-derives the tier. Tiers can drop here.
func ReversePoints(c *models.Customer, amountRefunded float64) {
	c.LoyaltyPoints -= int(math.Floor(amountRefunded))
	if c.LoyaltyPoints < 0 {
		c.LoyaltyPoints = 0
	}
	c.LoyaltyTier = models.TierForPoints(c.LoyaltyPoints)
}
