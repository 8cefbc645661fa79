package redis

const (
	// KeyPrefix namespaces every value written by the address book
	KeyPrefix = "addressbook:kv:"
)

// Key returns the Redis key for a logical slot name
func Key(name string) string {
	return KeyPrefix + name
}
