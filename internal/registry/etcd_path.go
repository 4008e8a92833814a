package registry

import (
	"fmt"
	"strings"

	"github.com/auto-route/docker-gateway-sync/internal/util"
)

// Keys are skydns-style reversed-domain paths so consumers can list a whole
// zone with a prefix query: app.example.org -> <prefix>/org/example/app.

func keyForDomain(prefix, domainName string) string {
	prefix = strings.TrimRight(prefix, "/")
	trimmed := strings.TrimSuffix(strings.TrimSpace(domainName), ".")
	parts := strings.Split(trimmed, ".")
	parts = util.Reverse(parts)
	return fmt.Sprintf("%s/%s", prefix, strings.Join(parts, "/"))
}

func domainFromKey(prefix, key string) string {
	prefix = strings.TrimRight(prefix, "/")
	path := strings.TrimPrefix(key, prefix)
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	parts = util.Reverse(parts)
	return strings.Join(parts, ".")
}
