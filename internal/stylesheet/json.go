package stylesheet

import "encoding/json"

// MarshalJSON renders a Class as its name, so CLI JSON output carries
// "STATIC"/"DETERMINISTIC"/"NONDETERMINISTIC" rather than a bare int.
func (c Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// MarshalJSON renders a DepKind as its name (§3).
func (k DepKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalJSON renders a WarningKind as its name (§7's closed taxonomy).
func (k WarningKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}
