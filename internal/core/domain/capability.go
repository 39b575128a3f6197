package domain

// Role is a marketplace role selected at registration.
type Role string

const (
	RoleBuyer       Role = "buyer"
	RoleSeller      Role = "seller"
	RoleTransporter Role = "transporter"
)

// Capability is an action class granted by a role.
type Capability string

const (
	CapabilityBuy       Capability = "buy"
	CapabilitySell      Capability = "sell"
	CapabilityTransport Capability = "transport"
)

// roleCapabilities maps each selectable role to the capability it grants.
var roleCapabilities = map[Role]Capability{
	RoleBuyer:       CapabilityBuy,
	RoleSeller:      CapabilitySell,
	RoleTransporter: CapabilityTransport,
}

// ValidRole reports whether the string names a selectable role.
func ValidRole(r string) bool {
	_, ok := roleCapabilities[Role(r)]
	return ok
}

// CapabilitiesForRoles derives the capability set for the selected roles.
// Unknown roles are ignored; duplicates collapse. Order follows input order.
func CapabilitiesForRoles(roles []string) []string {
	seen := make(map[Capability]bool, len(roles))
	caps := make([]string, 0, len(roles))
	for _, r := range roles {
		cap, ok := roleCapabilities[Role(r)]
		if !ok || seen[cap] {
			continue
		}
		seen[cap] = true
		caps = append(caps, string(cap))
	}
	return caps
}

// HasCapability reports whether the capability set contains the given capability.
func HasCapability(capabilities []string, cap Capability) bool {
	for _, c := range capabilities {
		if c == string(cap) {
			return true
		}
	}
	return false
}

// UnlimitedQuota marks a plan limit with no monthly cap.
const UnlimitedQuota = -1

// Plan describes a subscription tier and its monthly quotas.
type Plan struct {
	Code                     string  `json:"code"`
	Name                     string  `json:"name"`
	PriceZAR                 float64 `json:"price_zar"`
	MonthlyListings          int     `json:"monthly_listings"`
	MonthlyOffers            int     `json:"monthly_offers"`
	MonthlyTransportRequests int     `json:"monthly_transport_requests"`
	ChatAccess               bool    `json:"chat_access"`
	Analytics                bool    `json:"analytics"`
	PrioritySupport          bool    `json:"priority_support"`
}

// Plan codes
const (
	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

// SubscriptionPlans is the static plan table.
var SubscriptionPlans = map[string]Plan{
	PlanFree: {
		Code:                     PlanFree,
		Name:                     "Free",
		PriceZAR:                 0,
		MonthlyListings:          3,
		MonthlyOffers:            5,
		MonthlyTransportRequests: 2,
	},
	PlanBasic: {
		Code:                     PlanBasic,
		Name:                     "Basic",
		PriceZAR:                 299,
		MonthlyListings:          15,
		MonthlyOffers:            30,
		MonthlyTransportRequests: 10,
		ChatAccess:               true,
	},
	PlanPremium: {
		Code:                     PlanPremium,
		Name:                     "Premium",
		PriceZAR:                 899,
		MonthlyListings:          UnlimitedQuota,
		MonthlyOffers:            UnlimitedQuota,
		MonthlyTransportRequests: UnlimitedQuota,
		ChatAccess:               true,
		Analytics:                true,
		PrioritySupport:          true,
	},
}

// PlanByCode returns the plan for a code, falling back to the free tier.
func PlanByCode(code string) Plan {
	if plan, ok := SubscriptionPlans[code]; ok {
		return plan
	}
	return SubscriptionPlans[PlanFree]
}

// ValidPlanCode reports whether the code names a known plan.
func ValidPlanCode(code string) bool {
	_, ok := SubscriptionPlans[code]
	return ok
}

// WithinQuota reports whether another action fits under a monthly limit.
func WithinQuota(limit int, used int64) bool {
	if limit == UnlimitedQuota {
		return true
	}
	return used < int64(limit)
}

// QuotaFor returns the plan's monthly limit for a capability-gated action.
func (p Plan) QuotaFor(cap Capability) int {
	switch cap {
	case CapabilitySell:
		return p.MonthlyListings
	case CapabilityBuy:
		return p.MonthlyOffers
	case CapabilityTransport:
		return p.MonthlyTransportRequests
	}
	return 0
}
