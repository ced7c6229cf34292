package tokens

// Budget tracks tokens spent against a fixed ceiling.
// The running total never decreases. A Budget belongs to a single assembly
// pass and is not safe for concurrent use.
type Budget struct {
	// Ceiling is the maximum total the budget admits.
	// It may be negative, in which case nothing fits.
	Ceiling int

	used int
}

// NewBudget creates a budget with the given ceiling and nothing spent.
func NewBudget(ceiling int) *Budget {
	return &Budget{Ceiling: ceiling}
}

// Fits returns true if spending n more tokens stays within the ceiling.
func (b *Budget) Fits(n int) bool {
	return b.used+n <= b.Ceiling
}

// Add records n spent tokens. Negative values are ignored.
func (b *Budget) Add(n int) {
	if n > 0 {
		b.used += n
	}
}

// Used returns the running total.
func (b *Budget) Used() int {
	return b.used
}

// Remaining returns the tokens left before the ceiling, or 0 if exceeded.
func (b *Budget) Remaining() int {
	remaining := b.Ceiling - b.used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Exceeded returns true if the running total is above the ceiling.
func (b *Budget) Exceeded() bool {
	return b.used > b.Ceiling
}
