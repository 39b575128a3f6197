package domain

import (
	"reflect"
	"testing"
)

func TestCapabilitiesForRoles(t *testing.T) {
	got := CapabilitiesForRoles([]string{"buyer", "seller"})
	want := []string{"buy", "sell"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCapabilitiesForRolesDeduplicates(t *testing.T) {
	got := CapabilitiesForRoles([]string{"buyer", "buyer", "transporter"})
	want := []string{"buy", "transport"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCapabilitiesForRolesIgnoresUnknown(t *testing.T) {
	got := CapabilitiesForRoles([]string{"admin", "seller", "banana"})
	want := []string{"sell"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{"buyer", "seller", "transporter"} {
		if !ValidRole(r) {
			t.Errorf("%q should be a valid role", r)
		}
	}
	if ValidRole("admin") || ValidRole("") {
		t.Error("admin and empty string must not be selectable roles")
	}
}

func TestHasCapability(t *testing.T) {
	caps := []string{"buy", "transport"}
	if !HasCapability(caps, CapabilityBuy) {
		t.Error("expected buy capability")
	}
	if HasCapability(caps, CapabilitySell) {
		t.Error("did not expect sell capability")
	}
	if HasCapability(nil, CapabilityBuy) {
		t.Error("empty capability set grants nothing")
	}
}

func TestWithinQuota(t *testing.T) {
	if !WithinQuota(3, 2) {
		t.Error("2 of 3 used should be within quota")
	}
	if WithinQuota(3, 3) {
		t.Error("3 of 3 used should exceed quota")
	}
	if WithinQuota(0, 0) {
		t.Error("zero limit permits nothing")
	}
	if !WithinQuota(UnlimitedQuota, 1_000_000) {
		t.Error("unlimited quota never exhausts")
	}
}

func TestPlanByCodeFallsBackToFree(t *testing.T) {
	if got := PlanByCode("enterprise"); got.Code != PlanFree {
		t.Errorf("unknown code should fall back to free, got %s", got.Code)
	}
	if got := PlanByCode(PlanPremium); got.Code != PlanPremium {
		t.Errorf("got %s, want premium", got.Code)
	}
}

func TestPlanQuotas(t *testing.T) {
	free := PlanByCode(PlanFree)
	if free.MonthlyListings != 3 || free.MonthlyOffers != 5 || free.MonthlyTransportRequests != 2 {
		t.Errorf("unexpected free quotas: %+v", free)
	}
	if free.ChatAccess {
		t.Error("free plan must not include chat")
	}

	basic := PlanByCode(PlanBasic)
	if basic.MonthlyListings != 15 || basic.MonthlyOffers != 30 || basic.MonthlyTransportRequests != 10 {
		t.Errorf("unexpected basic quotas: %+v", basic)
	}
	if !basic.ChatAccess {
		t.Error("basic plan includes chat")
	}

	premium := PlanByCode(PlanPremium)
	if premium.MonthlyListings != UnlimitedQuota || premium.MonthlyOffers != UnlimitedQuota {
		t.Errorf("premium quotas should be unlimited: %+v", premium)
	}
}

func TestQuotaFor(t *testing.T) {
	basic := PlanByCode(PlanBasic)
	if got := basic.QuotaFor(CapabilitySell); got != 15 {
		t.Errorf("sell quota: got %d, want 15", got)
	}
	if got := basic.QuotaFor(CapabilityBuy); got != 30 {
		t.Errorf("buy quota: got %d, want 30", got)
	}
	if got := basic.QuotaFor(CapabilityTransport); got != 10 {
		t.Errorf("transport quota: got %d, want 10", got)
	}
	if got := basic.QuotaFor(Capability("unknown")); got != 0 {
		t.Errorf("unknown capability quota: got %d, want 0", got)
	}
}

func TestValidPlanCode(t *testing.T) {
	for _, code := range []string{PlanFree, PlanBasic, PlanPremium} {
		if !ValidPlanCode(code) {
			t.Errorf("%q should be a valid plan code", code)
		}
	}
	if ValidPlanCode("gold") {
		t.Error("gold must not be a valid plan code")
	}
}
