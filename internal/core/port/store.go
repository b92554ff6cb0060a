package port

// StateStore persists bridge state that must survive restarts, keyed
// by name. Implementations must be safe for use from a single actor
// goroutine; they are never called concurrently.
type StateStore interface {
	GetFloat(key string) (float64, bool, error)
	PutFloat(key string, value float64) error
	Delete(key string) error
	Close() error
}

// Store keys for the pellet inventory estimator.
const (
	STORE_KEY_PELLETS_REMAINING_KG  = "pellets_remaining_kg"
	STORE_KEY_PELLETS_LAST_CONSUMED = "pellets_last_consumption_kg"
)
