package domain

import "fmt"

// OfferStatus is the lifecycle state of an offer.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCountered OfferStatus = "countered"
	OfferExpired   OfferStatus = "expired"
)

// offerTransitions is the allowed transition table for offers.
// A countered offer stays negotiable until a terminal decision or expiry.
var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferPending:   {OfferAccepted, OfferRejected, OfferCountered, OfferExpired},
	OfferCountered: {OfferAccepted, OfferRejected, OfferCountered, OfferExpired},
	OfferAccepted:  {},
	OfferRejected:  {},
	OfferExpired:   {},
}

// DealStatus is the lifecycle state of a deal.
type DealStatus string

const (
	DealPending           DealStatus = "pending"
	DealConnected         DealStatus = "connected"
	DealNegotiating       DealStatus = "negotiating"
	DealTransportQuoted   DealStatus = "transport-quoted"
	DealTransportSelected DealStatus = "transport-selected"
	DealFacilitated       DealStatus = "facilitated"
	DealCompleted         DealStatus = "completed"
	DealCancelled         DealStatus = "cancelled"
)

// dealTransitions enforces monotonic forward progression. Cancelled is the
// absorbing alternative from every non-terminal state.
var dealTransitions = map[DealStatus][]DealStatus{
	DealPending:           {DealConnected, DealCancelled},
	DealConnected:         {DealNegotiating, DealTransportQuoted, DealCancelled},
	DealNegotiating:       {DealTransportQuoted, DealCancelled},
	DealTransportQuoted:   {DealTransportSelected, DealCancelled},
	DealTransportSelected: {DealFacilitated, DealCancelled},
	DealFacilitated:       {DealCompleted, DealCancelled},
	DealCompleted:         {},
	DealCancelled:         {},
}

// TransportRequestStatus is the lifecycle state of a transport request.
type TransportRequestStatus string

const (
	RequestOpen       TransportRequestStatus = "open"
	RequestQuoted     TransportRequestStatus = "quoted"
	RequestAccepted   TransportRequestStatus = "accepted"
	RequestInProgress TransportRequestStatus = "in_progress"
	RequestCompleted  TransportRequestStatus = "completed"
	RequestCancelled  TransportRequestStatus = "cancelled"
)

var requestTransitions = map[TransportRequestStatus][]TransportRequestStatus{
	RequestOpen:       {RequestQuoted, RequestCancelled},
	RequestQuoted:     {RequestAccepted, RequestCancelled},
	RequestAccepted:   {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestCompleted, RequestCancelled},
	RequestCompleted:  {},
	RequestCancelled:  {},
}

// TransportQuoteStatus is the state of a transporter's bid.
type TransportQuoteStatus string

const (
	QuotePending  TransportQuoteStatus = "pending"
	QuoteAccepted TransportQuoteStatus = "accepted"
	QuoteRejected TransportQuoteStatus = "rejected"
)

var quoteTransitions = map[TransportQuoteStatus][]TransportQuoteStatus{
	QuotePending:  {QuoteAccepted, QuoteRejected},
	QuoteAccepted: {},
	QuoteRejected: {},
}

// PaymentStatus tracks the payment side of a deal.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// FicaStatus is a document or aggregate compliance state.
type FicaStatus string

const (
	FicaPending  FicaStatus = "pending"
	FicaVerified FicaStatus = "verified"
	FicaRejected FicaStatus = "rejected"
)

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// CanTransition reports whether an offer may move from its current status to the target.
func (s OfferStatus) CanTransition(to OfferStatus) bool {
	return contains(offerTransitions[s], to)
}

// Transition validates the move and returns a typed error naming both states.
func (s OfferStatus) Transition(to OfferStatus) error {
	if !s.CanTransition(to) {
		return fmt.Errorf("%w: offer %s -> %s", ErrInvalidTransition, s, to)
	}
	return nil
}

// IsTerminal reports whether no further offer transitions are allowed.
func (s OfferStatus) IsTerminal() bool {
	return len(offerTransitions[s]) == 0
}

// CanTransition reports whether a deal may move from its current status to the target.
func (s DealStatus) CanTransition(to DealStatus) bool {
	return contains(dealTransitions[s], to)
}

// Transition validates the move and returns a typed error naming both states.
func (s DealStatus) Transition(to DealStatus) error {
	if !s.CanTransition(to) {
		return fmt.Errorf("%w: deal %s -> %s", ErrInvalidTransition, s, to)
	}
	return nil
}

// IsTerminal reports whether the deal has reached an absorbing state.
func (s DealStatus) IsTerminal() bool {
	return len(dealTransitions[s]) == 0
}

// CanTransition reports whether a transport request may move to the target status.
func (s TransportRequestStatus) CanTransition(to TransportRequestStatus) bool {
	return contains(requestTransitions[s], to)
}

// Transition validates the move and returns a typed error naming both states.
func (s TransportRequestStatus) Transition(to TransportRequestStatus) error {
	if !s.CanTransition(to) {
		return fmt.Errorf("%w: transport request %s -> %s", ErrInvalidTransition, s, to)
	}
	return nil
}

// CanTransition reports whether a transport quote may move to the target status.
func (s TransportQuoteStatus) CanTransition(to TransportQuoteStatus) bool {
	return contains(quoteTransitions[s], to)
}

// Transition validates the move and returns a typed error naming both states.
func (s TransportQuoteStatus) Transition(to TransportQuoteStatus) error {
	if !s.CanTransition(to) {
		return fmt.Errorf("%w: transport quote %s -> %s", ErrInvalidTransition, s, to)
	}
	return nil
}

// ValidDealStatus reports whether the string names a known deal status.
func ValidDealStatus(s string) bool {
	_, ok := dealTransitions[DealStatus(s)]
	return ok
}
