package domain

import (
	"errors"
	"testing"
)

func TestOfferTransitions(t *testing.T) {
	cases := []struct {
		from    OfferStatus
		to      OfferStatus
		allowed bool
	}{
		{OfferPending, OfferAccepted, true},
		{OfferPending, OfferRejected, true},
		{OfferPending, OfferCountered, true},
		{OfferPending, OfferExpired, true},
		{OfferCountered, OfferAccepted, true},
		{OfferCountered, OfferCountered, true},
		{OfferCountered, OfferExpired, true},
		{OfferAccepted, OfferRejected, false},
		{OfferAccepted, OfferPending, false},
		{OfferRejected, OfferAccepted, false},
		{OfferExpired, OfferAccepted, false},
		{OfferPending, OfferPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("offer %s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestOfferTransitionError(t *testing.T) {
	if err := OfferAccepted.Transition(OfferRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if err := OfferPending.Transition(OfferAccepted); err != nil {
		t.Errorf("expected nil error for valid transition, got %v", err)
	}
}

func TestOfferTerminalStates(t *testing.T) {
	terminal := []OfferStatus{OfferAccepted, OfferRejected, OfferExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("offer status %s should be terminal", s)
		}
	}
	if OfferPending.IsTerminal() || OfferCountered.IsTerminal() {
		t.Error("pending and countered offers must not be terminal")
	}
}

func TestDealForwardProgression(t *testing.T) {
	forward := []DealStatus{
		DealPending,
		DealConnected,
		DealNegotiating,
		DealTransportQuoted,
		DealTransportSelected,
		DealFacilitated,
		DealCompleted,
	}
	for i := 0; i < len(forward)-1; i++ {
		if !forward[i].CanTransition(forward[i+1]) {
			t.Errorf("deal %s -> %s should be allowed", forward[i], forward[i+1])
		}
	}
	// Backward moves are rejected at every point.
	for i := 1; i < len(forward); i++ {
		if forward[i].CanTransition(forward[i-1]) {
			t.Errorf("deal %s -> %s must not be allowed", forward[i], forward[i-1])
		}
	}
}

func TestDealConnectedSkipsNegotiating(t *testing.T) {
	if !DealConnected.CanTransition(DealTransportQuoted) {
		t.Error("connected deal should move straight to transport-quoted")
	}
}

func TestDealCancellation(t *testing.T) {
	cancellable := []DealStatus{
		DealPending, DealConnected, DealNegotiating,
		DealTransportQuoted, DealTransportSelected, DealFacilitated,
	}
	for _, s := range cancellable {
		if !s.CanTransition(DealCancelled) {
			t.Errorf("deal %s should be cancellable", s)
		}
	}
	if DealCompleted.CanTransition(DealCancelled) {
		t.Error("completed deal must not be cancellable")
	}
	if DealCancelled.CanTransition(DealConnected) {
		t.Error("cancelled deal must not be revivable")
	}
	if !DealCompleted.IsTerminal() || !DealCancelled.IsTerminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestDealSkippingStagesRejected(t *testing.T) {
	if DealConnected.CanTransition(DealFacilitated) {
		t.Error("deal must not skip from connected to facilitated")
	}
	if DealPending.CanTransition(DealCompleted) {
		t.Error("deal must not skip from pending to completed")
	}
}

func TestTransportRequestTransitions(t *testing.T) {
	forward := []TransportRequestStatus{
		RequestOpen, RequestQuoted, RequestAccepted, RequestInProgress, RequestCompleted,
	}
	for i := 0; i < len(forward)-1; i++ {
		if !forward[i].CanTransition(forward[i+1]) {
			t.Errorf("request %s -> %s should be allowed", forward[i], forward[i+1])
		}
	}
	if RequestOpen.CanTransition(RequestAccepted) {
		t.Error("request must not be accepted before any quote arrives")
	}
	if RequestCompleted.CanTransition(RequestCancelled) {
		t.Error("completed request must not be cancellable")
	}
	if err := RequestCancelled.Transition(RequestOpen); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransportQuoteTransitions(t *testing.T) {
	if !QuotePending.CanTransition(QuoteAccepted) {
		t.Error("pending quote should be acceptable")
	}
	if !QuotePending.CanTransition(QuoteRejected) {
		t.Error("pending quote should be rejectable")
	}
	if QuoteAccepted.CanTransition(QuoteRejected) {
		t.Error("accepted quote must not flip to rejected")
	}
	if QuoteRejected.CanTransition(QuoteAccepted) {
		t.Error("rejected quote must not flip to accepted")
	}
}

func TestValidDealStatus(t *testing.T) {
	for _, s := range []string{"pending", "connected", "negotiating", "transport-quoted", "transport-selected", "facilitated", "completed", "cancelled"} {
		if !ValidDealStatus(s) {
			t.Errorf("%q should be a valid deal status", s)
		}
	}
	for _, s := range []string{"", "done", "CONNECTED", "shipped"} {
		if ValidDealStatus(s) {
			t.Errorf("%q must not be a valid deal status", s)
		}
	}
}
