package commerce

// CommissionRateBasisPoints is the platform cut on a completed sale: 15%.
const CommissionRateBasisPoints int64 = 1500

// CommissionCents computes the commission on a bid amount in cents,
// rounded half up.
func CommissionCents(amountCents int64) int64 {
	return (amountCents*CommissionRateBasisPoints + 5000) / 10000
}

// AmountReceivedCents is what the seller gets after commission.
func AmountReceivedCents(amountCents int64) int64 {
	return amountCents - CommissionCents(amountCents)
}
