package engine

// allowedSymbol reports whether a candidate symbol may be traded. Empty
// symbols never trade; an empty allowlist means unrestricted.
func allowedSymbol(symbol string, allowlist map[string]struct{}) bool {
	if symbol == "" {
		return false
	}
	if len(allowlist) == 0 {
		return true
	}
	_, ok := allowlist[symbol]
	return ok
}
