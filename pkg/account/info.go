package account

// MergeInfo deep-merges patch into dst and returns dst. Keys in patch
// overwrite existing values, except when both sides hold objects, which merge
// recursively. dst may be nil.
func MergeInfo(dst, patch map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(patch))
	}
	for key, value := range patch {
		existing, ok := dst[key].(map[string]interface{})
		incoming, isObject := value.(map[string]interface{})
		if ok && isObject {
			dst[key] = MergeInfo(existing, incoming)
			continue
		}
		dst[key] = value
	}
	return dst
}
