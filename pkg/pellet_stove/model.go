package pellet_stove

// StatusDocument is the stove's reported state as decoded JSON.
// It is refetched on every poll and never mutated in place.
type StatusDocument map[string]any

// StoveInfo describes the controller identity as reported in the
// status document's meta block.
type StoveInfo struct {
	Manufacturer string
	Model        string
	Version      string
	Serial       string
	WlanFeatures string
}

type StoveReader interface {
	// FetchStatus performs a GET /status.cgi and returns the decoded
	// status document. Also refreshes the session nonce if the stove
	// issued a new one.
	FetchStatus() (StatusDocument, error)
	// SendCommand POSTs the given fields to /status.cgi using the
	// current session secret. A fetch is forced first if no nonce has
	// been observed yet.
	SendCommand(payload map[string]any) error
	Address() string
	// SetCredentials replaces address and PIN and invalidates the
	// session secret until the next fetch produces a nonce.
	SetCredentials(address string, pin string)
}

// InfoFromStatus extracts the controller identity from a status document.
func InfoFromStatus(doc StatusDocument) StoveInfo {
	info := StoveInfo{
		Manufacturer: "Haas+Sohn",
	}
	meta, ok := doc["meta"].(map[string]any)
	if !ok {
		return info
	}
	if v, ok := meta["typ"].(string); ok {
		info.Model = v
	}
	if v, ok := meta["sw_version"].(string); ok {
		info.Version = v
	}
	if v, ok := meta["sn"].(string); ok {
		info.Serial = v
	}
	if v, ok := meta["wlan_features"]; ok {
		info.WlanFeatures = stringifyComposite(v)
	}
	return info
}
