package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/mpapi/internal/logger"
)

// APIKeyHeader carries the consumer's API key.
const APIKeyHeader = "X-API-KEY"

// exemptPaths are routes that bypass authentication.
var exemptPaths = map[string]struct{}{
	"/health":    {},
	"/metrics":   {},
	"/heartbeat": {},
}

// apiKey is an accepted key, kept as a digest together with the label
// request logs use for its consumer.
type apiKey struct {
	digest [sha256.Size]byte
	label  string
}

// APIKeyMiddleware validates the X-API-KEY header against apiKeys and tags
// the request logger with the consumer label of the key. An empty apiKeys
// disables authentication.
func APIKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([]apiKey, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, newAPIKey(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get(APIKeyHeader)
			if presented == "" {
				writeError(w, http.StatusForbidden, "Missing API key")
				return
			}
			label, ok := match(keys, presented)
			if !ok {
				logpkg.FromContext(r.Context()).Info("api key rejected", zap.String("path", r.URL.Path))
				writeError(w, http.StatusForbidden, "Invalid API key")
				return
			}

			ctx := logpkg.With(r.Context(), zap.String("consumer", label))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newAPIKey(k string) apiKey {
	d := sha256.Sum256([]byte(k))
	return apiKey{digest: d, label: hex.EncodeToString(d[:4])}
}

// match compares digests in constant time against every accepted key.
func match(keys []apiKey, presented string) (string, bool) {
	d := sha256.Sum256([]byte(presented))
	label, found := "", false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(d[:], k.digest[:]) == 1 {
			label, found = k.label, true
		}
	}
	return label, found
}
