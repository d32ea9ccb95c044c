package provider

// StringsProvider supplies the next message a worker encodes, matching the
// upstream's three-variant interface: a constant string, a registry-backed
// message, and an HTTP joke-of-the-day fetch.
type StringsProvider interface {
	Next() (string, error)
}

// ConstString always returns the same fixed string.
type ConstString struct {
	value string
}

func NewConstString(s string) *ConstString { return &ConstString{value: s} }

func (c *ConstString) Next() (string, error) { return c.value, nil }

// RegistryStringsProvider stands in for the upstream's registry-backed
// message source (reading a per-service configuration value); registry
// access is out of scope here, so it always returns the message it was
// constructed with.
type RegistryStringsProvider struct {
	message string
}

func NewRegistryStringsProvider(message string) *RegistryStringsProvider {
	return &RegistryStringsProvider{message: message}
}

func (r *RegistryStringsProvider) Next() (string, error) { return r.message, nil }

// JokeStringsProvider stands in for the upstream's HTTP joke-of-the-day
// fetch; the network call is out of scope here, so it always returns the
// same built-in line.
type JokeStringsProvider struct{}

func NewJokeStringsProvider() *JokeStringsProvider { return &JokeStringsProvider{} }

func (j *JokeStringsProvider) Next() (string, error) {
	return "Chuck Norris can binary search an unsorted array.", nil
}
