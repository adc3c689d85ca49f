// Package stylesheet implements the static analyzer for the stylesheet
// compiler: rule extraction, value classification, token resolution, the
// rule graph, and the contamination/boundary pass. It produces a Result
// ready for the constant pool and binary emitter.
package stylesheet

// Class is the binding tier a rule or declaration resolves to.
// The ranking is total: STATIC < DETERMINISTIC < NONDETERMINISTIC.
type Class int

const (
	Static Class = iota
	Deterministic
	Nondeterministic
)

// Max returns the stronger of two classes.
func (c Class) Max(o Class) Class {
	if o > c {
		return o
	}
	return c
}

// String renders the classification name for diagnostics and summaries.
func (c Class) String() string {
	switch c {
	case Static:
		return "STATIC"
	case Deterministic:
		return "DETERMINISTIC"
	case Nondeterministic:
		return "NONDETERMINISTIC"
	default:
		return "UNKNOWN"
	}
}

// EmitType is the tier a rule is serialized under.
type EmitType int

const (
	EmitResolvedStyleBlock EmitType = iota
	EmitDynamicBoundary
	EmitRuleSet
	EmitNondeterministic
)

// DepKind enumerates the closed set of dependency kinds.
type DepKind int

const (
	DepParentSize DepKind = iota
	DepViewport
	DepFontMetrics
	DepEnv
	DepTheme
	DepContainerSize
	DepUserPref
	DepIntrinsicSize
	DepStructure
)

// String renders the dependency kind name, used in diagnostics and the
// summary's dependency-kind histogram.
func (k DepKind) String() string {
	switch k {
	case DepParentSize:
		return "PARENT_SIZE"
	case DepViewport:
		return "VIEWPORT"
	case DepFontMetrics:
		return "FONT_METRICS"
	case DepEnv:
		return "ENV"
	case DepTheme:
		return "THEME"
	case DepContainerSize:
		return "CONTAINER_SIZE"
	case DepUserPref:
		return "USER_PREF"
	case DepIntrinsicSize:
		return "INTRINSIC_SIZE"
	case DepStructure:
		return "STRUCTURE"
	default:
		return "UNKNOWN"
	}
}

// InvalidationMask returns a 32-bit mask with the single bit for this
// dependency's owning property set. Bit 31 is reserved for STRUCTURE;
// other kinds set one of the low 31 bits, chosen from the property name
// via propertyBit.
func InvalidationMask(property string, kind DepKind) uint32 {
	if kind == DepStructure {
		return 1 << 31
	}
	return 1 << propertyBit(property)
}

// Sentinel property names used for synthetic dependencies.
const (
	SentinelMedia    = "__media__"
	SentinelSelector = "__selector__"
)

// Dependency is a typed edge from a rule to an environmental input
// whose change requires recomputation.
type Dependency struct {
	OwnerID     string  `json:"owner_id"`
	Property    string  `json:"property"`
	Kind        DepKind `json:"kind"`
	Mask        uint32  `json:"invalidation_mask"`
	Expression  string  `json:"expression"`
	ContainerID string  `json:"container_id,omitempty"` // set for CONTAINER_SIZE deps once resolved; empty otherwise
}

// dedupeKey is the (property, kind, container, expression) tuple used to
// deduplicate dependencies attached to a rule.
type dedupeKey struct {
	property   string
	kind       DepKind
	container  string
	expression string
}

func (d Dependency) dedupeKey() dedupeKey {
	return dedupeKey{d.Property, d.Kind, d.ContainerID, d.Expression}
}

// WarningKind is the closed warning taxonomy from §7.
type WarningKind int

const (
	WarnStructuralDynamic WarningKind = iota
	WarnMissingContainer
	WarnPortalMissing
	WarnUnresolvedToken
	WarnUndefinedToken
	WarnMixedOperands
	WarnTokenCycle
	WarnDepWarning
)

func (k WarningKind) String() string {
	switch k {
	case WarnStructuralDynamic:
		return "STRUCTURAL_DYNAMIC"
	case WarnMissingContainer:
		return "MISSING_CONTAINER"
	case WarnPortalMissing:
		return "PORTAL_MISSING"
	case WarnUnresolvedToken:
		return "UNRESOLVED_TOKEN"
	case WarnUndefinedToken:
		return "UNDEFINED_TOKEN"
	case WarnMixedOperands:
		return "MIXED_OPERANDS"
	case WarnTokenCycle:
		return "TOKEN_CYCLE"
	case WarnDepWarning:
		return "DEP_WARNING"
	default:
		return "UNKNOWN"
	}
}

// Warning is a structured diagnostic attached to a rule or emitted globally.
type Warning struct {
	Kind            WarningKind `json:"kind"`
	NodeID          string      `json:"node_id,omitempty"`
	Message         string      `json:"message"`
	TokenName       string      `json:"token_name,omitempty"`
	ReferencedToken string      `json:"referenced_token,omitempty"`
	Property        string      `json:"property,omitempty"`
}

// Rule is a single selector's accumulated declarations.
type Rule struct {
	ID                   string
	Selector             string
	SourceOrder          int
	Declarations         map[string]string
	DeclOrder            []string // insertion order of Declarations keys, for merge/fallback text
	NormalizedDeclarations map[string]string

	TreeParentID     string
	TreeChildren     []string
	PortalTargetRaw  string
	PortalTargetID   string
	EffectiveParentID string
	IsContainerBoundary bool

	LocalClass            Class
	FinalClass            Class
	ContaminationSource   string

	BoundaryID string

	Deps     []Dependency
	depSeen  map[dedupeKey]bool
	Warnings []Warning

	EmitType EmitType

	Hash uint32
}

// AddDep appends a dependency to the rule, deduplicating by
// (property, kind, container, expression) as required by §3.
func (r *Rule) AddDep(d Dependency) {
	if r.depSeen == nil {
		r.depSeen = make(map[dedupeKey]bool)
	}
	d.OwnerID = r.ID
	d.Mask = InvalidationMask(d.Property, d.Kind)
	key := d.dedupeKey()
	if r.depSeen[key] {
		return
	}
	r.depSeen[key] = true
	r.Deps = append(r.Deps, d)
}

// TokenRecord is a flattened custom-property record in the TokenTable.
type TokenRecord struct {
	Raw        string
	Resolved   string
	PointerTo  string // ultimate absolute token name, empty when this is a leaf
}

// TokenTable maps custom-property name to its flattened record.
type TokenTable map[string]TokenRecord

// BoundaryManifest is emitted exactly once per dynamic boundary.
type BoundaryManifest struct {
	BoundaryID  string
	SubgraphIDs []string
	Entries     []Dependency
	PortalDependency  bool
	ContaminationOnly bool
}

// Result is the full output of the analyzer pipeline: every rule keyed by
// id plus ordered for deterministic iteration, the flattened token table,
// boundary manifests, and every warning collected along the way.
type Result struct {
	Rules       map[string]*Rule
	Order       []string // rule ids in source_order
	Tokens      TokenTable
	Manifests   map[string]*BoundaryManifest
	Warnings    []Warning
}
