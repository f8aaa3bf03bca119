package bind

// CalcFunc combines the resolved slot values of a multi-value directive into
// a single bound value.
type CalcFunc func(slots ...any) any

// Config names the directive markers the scanner recognizes. A Config is
// immutable once a binder is constructed from it; child binders share their
// parent's Config by reference and never mutate it.
type Config struct {
	// AttrSuffix marks attribute-binding directives ("class-a" binds "class").
	AttrSuffix string

	// PropSuffix marks property-binding directives ("value-p" binds "value").
	PropSuffix string

	// TextAttr is the directive binding an element's text content.
	TextAttr string

	// RefAttr mounts a nested scalar scope at the directive's path.
	RefAttr string

	// ListAttr mounts a nested iterable scope. Wrapping the path in "{}"
	// enables index mode.
	ListAttr string

	// ClosedAttr excludes the element's subtree from the recursive scan.
	ClosedAttr string

	// PathSep separates path segments.
	PathSep string

	// MultiSep separates the alternating path/literal slots of a
	// multi-value directive.
	MultiSep string

	// CalcMark separates a calc-function name from the slot expression.
	CalcMark string

	// Calcs is the registry of named combining functions.
	Calcs map[string]CalcFunc
}

// DefaultConfig returns the stock directive configuration.
func DefaultConfig() *Config {
	return &Config{
		AttrSuffix: "-a",
		PropSuffix: "-p",
		TextAttr:   "t",
		RefAttr:    "re-f",
		ListAttr:   "ite-r",
		ClosedAttr: "close-d",
		PathSep:    ".",
		MultiSep:   "|",
		CalcMark:   ":=",
		Calcs:      map[string]CalcFunc{},
	}
}

// clone copies the config so option application never aliases the caller's
// value.
func (c *Config) clone() *Config {
	out := *c
	out.Calcs = make(map[string]CalcFunc, len(c.Calcs))
	for k, v := range c.Calcs {
		out.Calcs[k] = v
	}
	return &out
}

// Option configures a binder at construction time.
type Option func(*options)

type options struct {
	cfg      *Config
	observer Observer
}

// WithConfig replaces the default directive configuration.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.cfg = cfg.clone()
	}
}

// WithCalc registers a named combining function.
func WithCalc(name string, fn CalcFunc) Option {
	return func(o *options) {
		o.cfg.Calcs[name] = fn
	}
}

// WithObserver installs a callback that receives every patch the binder
// applies to its elements. Transports use this to mirror the document.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func buildOptions(opts []Option) *options {
	o := &options{cfg: DefaultConfig()}
	for _, fn := range opts {
		fn(o)
	}
	return o
}
