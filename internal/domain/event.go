package domain

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventDeposit    EventKind = "deposit"
	EventWithdrawal EventKind = "withdrawal"
	EventInterest   EventKind = "interest"
)

func (k EventKind) Label() string {
	switch k {
	case EventDeposit:
		return "Deposited"
	case EventWithdrawal:
		return "Withdrawn"
	case EventInterest:
		return "Interest credited"
	default:
		return string(k)
	}
}

// Event is emitted once per successful deposit, withdrawal or interest credit.
// Amount is the credited interest for EventInterest.
type Event struct {
	Kind      EventKind
	AccountID string
	Amount    decimal.Decimal
	Balance   decimal.Decimal
	Timestamp time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s: %s. New balance: %s", e.Kind.Label(), e.Amount.String(), e.Balance.String())
}

type Notifier interface {
	Notify(Event)
}

type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) {
	f(e)
}

type NopNotifier struct{}

func (NopNotifier) Notify(Event) {}

type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, e.String())
}
