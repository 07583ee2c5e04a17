package rediskey

import "fmt"

// Auth keys (global convention across services)
const (
	AuthRefreshPrefix = "auth:refresh"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildRefreshSessionKey returns "auth:refresh:{userID}"
func BuildRefreshSessionKey(userID string) string {
	return NamespaceKey(AuthRefreshPrefix, userID)
}
