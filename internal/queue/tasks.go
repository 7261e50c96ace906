package queue

const (
	// TypeCacheSweep deletes extraction cache entries older than the TTL.
	// Scheduled on a fixed timer, independent of request traffic.
	TypeCacheSweep = "cache:sweep"
)

type CacheSweepPayload struct {
	// OlderThanHours bounds the sweep cutoff; zero means the default TTL.
	OlderThanHours int `json:"older_than_hours"`
}
