package domain

// Options is the conversion option bag sent to the service alongside a
// document. It is passed through as-is; the service, not this client,
// interprets the keys.
type Options map[string]any

// DefaultOptions returns the options applied when the user provides none.
func DefaultOptions() Options {
	return Options{
		"math_inline_delimiters": []string{"$", "$"},
		"rm_spaces":              true,
		"include_equation_tags":  true,
	}
}

// Clone returns a shallow copy so callers can add per-job keys without
// mutating a shared bag.
func (o Options) Clone() Options {
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}
