package crypto

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeQueryDictionary canonicalizes a string-to-string map the way
// the protocol requires for signing GET requests: order the keys
// lexicographically, percent-encode both key and value per RFC3986, and
// join as "k=v&k=v". An empty map canonicalizes to empty bytes.
func CanonicalizeQueryDictionary(params map[string]string) []byte {
	if len(params) == 0 {
		return []byte{}
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(params[k]))
	}
	return []byte(strings.Join(pairs, "&"))
}

// percentEncode applies RFC3986 percent-encoding. url.QueryEscape encodes
// spaces as "+" and is otherwise form-encoding flavored, so the handful of
// characters it treats differently from RFC3986's unreserved set are
// corrected afterward.
func percentEncode(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return escaped
}
