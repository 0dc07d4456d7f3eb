package pricing

import (
	"math"

	"retail-orders/internal/models"
)

// Loyalty tier discount percents
var loyaltyDiscounts = map[string]float64{
	models.TierBronze: 0.0,
	models.TierSilver: 5.0,
	models.TierGold:   10.0,
}

// Breakdown is the result of a discount calculation.
type Breakdown struct {
	LoyaltyDiscount float64 `json:"loyalty_discount"`
	PromoDiscount   float64 `json:"promo_discount"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalTotal      float64 `json:"final_total"`
}

// CalculateDiscount computes the discount for an order. The loyalty
// discount is taken off the subtotal first, then the promo discount is
// taken off the post-loyalty remainder, so the two compound rather than
// apply independently. An unknown tier contributes 0%. A promo code
// contributes 0% unless it is active and the subtotal meets its minimum
// order amount.
//
// Pure function: no I/O, deterministic for given inputs. Both outputs
// are rounded to two decimal places, half away from zero.
func CalculateDiscount(subtotal float64, loyaltyTier string, promo *models.PromoCode) (discountAmount, finalTotal float64) {
	b := CalculateBreakdown(subtotal, loyaltyTier, promo)
	return b.DiscountAmount, b.FinalTotal
}

// CalculateBreakdown is CalculateDiscount with the per-source amounts
// exposed, for receipts and event payloads.
func CalculateBreakdown(subtotal float64, loyaltyTier string, promo *models.PromoCode) Breakdown {
	loyaltyPercent := loyaltyDiscounts[loyaltyTier]

	promoPercent := 0.0
	if promo != nil && promo.IsActive && subtotal >= promo.MinOrderAmount {
		promoPercent = promo.DiscountPercent
	}

	loyaltyDiscount := subtotal * (loyaltyPercent / 100.0)
	afterLoyalty := subtotal - loyaltyDiscount

	promoDiscount := afterLoyalty * (promoPercent / 100.0)

	// The final total is derived from the rounded discount so that
	// total == Round2(subtotal - discountAmount) holds exactly.
	discountAmount := Round2(loyaltyDiscount + promoDiscount)

	return Breakdown{
		LoyaltyDiscount: Round2(loyaltyDiscount),
		PromoDiscount:   Round2(promoDiscount),
		DiscountAmount:  discountAmount,
		FinalTotal:      Round2(subtotal - discountAmount),
	}
}

// Round2 rounds a monetary amount to two decimal places, half away from
// zero. Placement and refund both round with this so recomputed amounts
// always match persisted ones.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
