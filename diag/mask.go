package diag

const (
	maskPrefix = 4
	maskSuffix = 6
)

// Mask reveals the first prefix and last suffix characters of v. Empty values
// render as "<unset>", values too short to mask safely as "<set>".
func Mask(v string, prefix, suffix int) string {
	if v == "" {
		return "<unset>"
	}
	if prefix < 0 {
		prefix = 0
	}
	if suffix < 0 {
		suffix = 0
	}
	if len(v) <= prefix+suffix {
		return "<set>"
	}
	return v[:prefix] + "…" + v[len(v)-suffix:]
}

// MaskSecret masks a credential revealing 4 leading and 6 trailing characters.
func MaskSecret(v string) string {
	return Mask(v, maskPrefix, maskSuffix)
}

// Presence renders only whether v is set.
func Presence(v string) string {
	if v == "" {
		return "<unset>"
	}
	return "<set>"
}
