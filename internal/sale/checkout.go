package sale

// Checkout validates that s can be completed and returns the finalized session.
// It never changes s; emitting and resetting belong to the caller.
func Checkout(s Session) (Session, error) {
	s = Recompute(s)

	if len(s.Lines) == 0 {
		return s, ErrIncompleteSale
	}

	if s.Payment == "" {
		return s, ErrPaymentMethodRequired
	}

	if s.Payment == PaymentCash && s.Tendered.LessThan(s.Totals.GrandTotal) {
		return s, &InsufficientTenderError{Tendered: s.Tendered, Total: s.Totals.GrandTotal}
	}

	return s, nil
}
