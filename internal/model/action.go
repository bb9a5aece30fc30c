package model

// SignLabel is the colour assigned to a difference bar.
// Keep these values stable; they are written to exports and the dashboard.
type SignLabel string

const (
	SignGreen SignLabel = "green"
	SignRed   SignLabel = "red"
)

// SignPolicy decides which label an exactly-zero difference receives.
type SignPolicy int

const (
	// StrictPositive labels d > 0 green (imbalance task).
	StrictPositive SignPolicy = iota
	// NonNegative labels d >= 0 green (generation tasks).
	NonNegative
)

func (p SignPolicy) String() string {
	if p == NonNegative {
		return ">=0"
	}
	return ">0"
}

func SignLabelFor(diff float64, policy SignPolicy) SignLabel {
	switch policy {
	case NonNegative:
		if diff >= 0 {
			return SignGreen
		}
	default:
		if diff > 0 {
			return SignGreen
		}
	}
	return SignRed
}
