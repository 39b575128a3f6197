package domain

// PlatformFeePerTon is the flat facilitation fee in Rand charged per ton on
// every accepted offer.
const PlatformFeePerTon = 1.0

// DealAmounts computes the platform fee and total amount for an accepted
// offer: fee = quantity x R1/ton, total = price x quantity + fee.
func DealAmounts(pricePerTon, quantityTons float64) (platformFee, totalAmount float64) {
	platformFee = quantityTons * PlatformFeePerTon
	totalAmount = pricePerTon*quantityTons + platformFee
	return platformFee, totalAmount
}

// ComplianceScore returns the FICA compliance percentage for a document set.
// Integer arithmetic so 2 of 3 verified scores 66.
func ComplianceScore(verified, total int) int {
	if total == 0 {
		return 0
	}
	return verified * 100 / total
}

// Risk levels derived from the compliance score.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskLevel buckets a compliance score: >=80 low, >=60 medium, else high.
func RiskLevel(score int) string {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskMedium
	default:
		return RiskHigh
	}
}
