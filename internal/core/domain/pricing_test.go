package domain

import "testing"

func TestDealAmounts(t *testing.T) {
	fee, total := DealAmounts(2800, 5)
	if fee != 5 {
		t.Errorf("platform fee: got %v, want 5", fee)
	}
	if total != 14005 {
		t.Errorf("total amount: got %v, want 14005", total)
	}
}

func TestDealAmountsZeroQuantity(t *testing.T) {
	fee, total := DealAmounts(2800, 0)
	if fee != 0 || total != 0 {
		t.Errorf("zero quantity should yield zero fee and total, got %v / %v", fee, total)
	}
}

func TestComplianceScoreIntegerMath(t *testing.T) {
	if got := ComplianceScore(2, 3); got != 66 {
		t.Errorf("2 of 3: got %d, want 66", got)
	}
	if got := ComplianceScore(4, 4); got != 100 {
		t.Errorf("4 of 4: got %d, want 100", got)
	}
	if got := ComplianceScore(0, 4); got != 0 {
		t.Errorf("0 of 4: got %d, want 0", got)
	}
	if got := ComplianceScore(0, 0); got != 0 {
		t.Errorf("no documents: got %d, want 0", got)
	}
}

func TestRiskLevelBuckets(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, RiskLow},
		{80, RiskLow},
		{79, RiskMedium},
		{66, RiskMedium},
		{60, RiskMedium},
		{59, RiskHigh},
		{0, RiskHigh},
	}
	for _, c := range cases {
		if got := RiskLevel(c.score); got != c.want {
			t.Errorf("score %d: got %s, want %s", c.score, got, c.want)
		}
	}
}

func TestPartiallyVerifiedDocumentSet(t *testing.T) {
	// Two verified out of three submitted lands in the medium band.
	score := ComplianceScore(2, 3)
	if got := RiskLevel(score); got != RiskMedium {
		t.Errorf("got %s, want %s", got, RiskMedium)
	}
}
