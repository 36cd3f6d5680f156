package domain

// AccessTier is the account state that governs which capabilities a session has.
type AccessTier string

const (
	TierAnonymous AccessTier = "anonymous"
	TierGuest     AccessTier = "guest"
	TierMember    AccessTier = "member"
	TierPro       AccessTier = "pro"
)

// Tiers lists every tier in ascending order.
var Tiers = []AccessTier{TierAnonymous, TierGuest, TierMember, TierPro}

// Capability is a single named permission checked before an operation.
type Capability string

const (
	CapViewSample     Capability = "view_sample"
	CapEditDefinition Capability = "edit_definition"
	CapSaveDefinition Capability = "save_definition"
	CapRunBacktest    Capability = "run_backtest"
	CapExportCode     Capability = "export_code"
	CapClearMessages  Capability = "clear_messages"
)

// Capabilities lists every capability.
var Capabilities = []Capability{
	CapViewSample,
	CapEditDefinition,
	CapSaveDefinition,
	CapRunBacktest,
	CapExportCode,
	CapClearMessages,
}

var memberCapabilities = []Capability{
	CapViewSample,
	CapEditDefinition,
	CapSaveDefinition,
	CapRunBacktest,
	CapExportCode,
	CapClearMessages,
}

// tierCapabilities is the fixed capability set of each tier. Guest and
// anonymous are capability-equivalent; pro is a billing flag on top of member.
var tierCapabilities = map[AccessTier][]Capability{
	TierAnonymous: {CapViewSample},
	TierGuest:     {CapViewSample},
	TierMember:    memberCapabilities,
	TierPro:       memberCapabilities,
}

// ParseTier converts a string to an AccessTier.
func ParseTier(s string) (AccessTier, error) {
	t := AccessTier(s)
	if _, ok := tierCapabilities[t]; !ok {
		return "", &InvalidValueError{Field: "tier", Value: s}
	}
	return t, nil
}

// IsAuthenticated reports whether the tier belongs to a durable identity.
func (t AccessTier) IsAuthenticated() bool {
	return t == TierMember || t == TierPro
}

// CapabilitiesOf returns a copy of the tier's capability set. Unknown tiers have none.
func CapabilitiesOf(t AccessTier) []Capability {
	caps := tierCapabilities[t]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// HasCapability reports whether tier t grants c.
func HasCapability(t AccessTier, c Capability) bool {
	for _, granted := range tierCapabilities[t] {
		if granted == c {
			return true
		}
	}
	return false
}

// Authorize returns nil when t grants c, or a *DeniedError carrying the missing capability.
func Authorize(t AccessTier, c Capability) error {
	if HasCapability(t, c) {
		return nil
	}
	return &DeniedError{Capability: c, Tier: t}
}

// TierEvent is an explicit event that may change the active tier.
type TierEvent string

const (
	EventSignIn          TierEvent = "sign_in"
	EventContinueAsGuest TierEvent = "continue_as_guest"
	EventUpgrade         TierEvent = "upgrade"
	EventSignOut         TierEvent = "sign_out"
)

// tierTransitions maps (from, event) to the resulting tier. Pairs that are not
// listed leave the tier unchanged.
var tierTransitions = map[AccessTier]map[TierEvent]AccessTier{
	TierAnonymous: {
		EventSignIn:          TierMember,
		EventContinueAsGuest: TierGuest,
		EventSignOut:         TierAnonymous,
	},
	TierGuest: {
		EventSignIn:          TierMember,
		EventContinueAsGuest: TierGuest,
		EventSignOut:         TierAnonymous,
	},
	TierMember: {
		EventSignIn:          TierMember,
		EventContinueAsGuest: TierGuest,
		EventUpgrade:         TierPro,
		EventSignOut:         TierAnonymous,
	},
	TierPro: {
		EventSignIn:          TierMember,
		EventContinueAsGuest: TierGuest,
		EventUpgrade:         TierPro,
		EventSignOut:         TierAnonymous,
	},
}

// Transition applies ev to t. Every pair is total: unknown pairs return t.
func (t AccessTier) Transition(ev TierEvent) AccessTier {
	if next, ok := tierTransitions[t][ev]; ok {
		return next
	}
	return t
}
