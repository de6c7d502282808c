package checkout

type Status string

const (
	StatusBuilt            Status = "BUILT"
	StatusInvoiceRequested Status = "INVOICE_REQUESTED"
	StatusValidated        Status = "VALIDATED"
	StatusClipped          Status = "CLIPPED"
	StatusRejected         Status = "REJECTED"
	StatusPaymentPending   Status = "PAYMENT_PENDING"
	StatusConfirmed        Status = "CONFIRMED"
	StatusDrifted          Status = "DRIFTED"
	StatusSettled          Status = "SETTLED"
)

var validNext = map[Status]map[Status]bool{
	StatusBuilt:            {StatusInvoiceRequested: true},
	StatusInvoiceRequested: {StatusValidated: true, StatusClipped: true, StatusRejected: true},
	StatusValidated:        {StatusPaymentPending: true},
	StatusClipped:          {},
	StatusRejected:         {},
	StatusPaymentPending:   {StatusConfirmed: true, StatusDrifted: true},
	StatusConfirmed:        {StatusSettled: true},
	StatusDrifted:          {},
	StatusSettled:          {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return len(validNext[s]) == 0 }
