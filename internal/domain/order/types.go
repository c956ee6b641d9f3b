package order

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentOutcome is the result reported by the payment provider.
type PaymentOutcome string

const (
	OutcomePaid   PaymentOutcome = "paid"
	OutcomeFailed PaymentOutcome = "failed"
)

func (o PaymentOutcome) IsValid() bool {
	return o == OutcomePaid || o == OutcomeFailed
}

func (o PaymentOutcome) TargetStatus() Status {
	if o == OutcomePaid {
		return StatusCompleted
	}
	return StatusCancelled
}
