package web

// Options collects what other parts of the program contribute to the
// engine.
type Options struct {
	Routes      []func(r Router)
	Middlewares []Handler
}

type Option func(*Options)

// WithRoutes adds a route registration callback, run during Configure.
func WithRoutes(f func(r Router)) Option {
	return func(o *Options) { o.Routes = append(o.Routes, f) }
}

// WithMiddlewares appends middlewares after the standard chain.
func WithMiddlewares(m ...Handler) Option {
	return func(o *Options) { o.Middlewares = append(o.Middlewares, m...) }
}
