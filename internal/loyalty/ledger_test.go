package loyalty

import (
	"testing"

	"retail-orders/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAwardPointsFloorsAmount(t *testing.T) {
	c := &models.Customer{LoyaltyPoints: 0, LoyaltyTier: models.TierBronze}

	AwardPoints(c, 72.99)

	assert.Equal(t, 72, c.LoyaltyPoints)
	assert.Equal(t, models.TierBronze, c.LoyaltyTier)
}

func TestAwardPointsUpgradesTier(t *testing.T) {
	c := &models.Customer{LoyaltyPoints: 480, LoyaltyTier: models.TierBronze}

	AwardPoints(c, 20.00)
	assert.Equal(t, 500, c.LoyaltyPoints)
	assert.Equal(t, models.TierSilver, c.LoyaltyTier)

	AwardPoints(c, 500.00)
	assert.Equal(t, 1000, c.LoyaltyPoints)
	assert.Equal(t, models.TierGold, c.LoyaltyTier)
}

func TestReversePointsDowngradesTier(t *testing.T) {
	c := &models.Customer{LoyaltyPoints: 1000, LoyaltyTier: models.TierGold}

	ReversePoints(c, 501.00)

	assert.Equal(t, 499, c.LoyaltyPoints)
	assert.Equal(t, models.TierBronze, c.LoyaltyTier)
}

func TestReversePointsClampsAtZero(t *testing.T) {
	c := &models.Customer{LoyaltyPoints: 50, LoyaltyTier: models.TierBronze}

	ReversePoints(c, 120.00)

	assert.Equal(t, 0, c.LoyaltyPoints)
	assert.Equal(t, models.TierBronze, c.LoyaltyTier)
}

func TestAwardThenReverseRoundTrips(t *testing.T) {
	c := &models.Customer{LoyaltyPoints: 0, LoyaltyTier: models.TierBronze}

	AwardPoints(c, 72.00)
	ReversePoints(c, 72.00)

	assert.Equal(t, 0, c.LoyaltyPoints)
	assert.Equal(t, models.TierBronze, c.LoyaltyTier)
}
