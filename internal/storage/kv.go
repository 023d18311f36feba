package storage

// KV is the key-value capability the library repository runs against.
// *Store implements it over SQLite; NoopKV stands in when no persistence
// backend is available.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// NoopKV is a KV with no backing medium: reads report absence, writes are
// discarded without error. Callers keep working, nothing persists.
type NoopKV struct{}

func (NoopKV) Get(string) (string, bool, error) { return "", false, nil }
func (NoopKV) Set(string, string) error         { return nil }
func (NoopKV) Delete(string) error              { return nil }
