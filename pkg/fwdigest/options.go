package fwdigest

type options struct {
	catalog     map[int]string
	catalogFile string
}

// Option configures a Decoder.
type Option func(*options)

// WithCatalog resolves event ids through names.
func WithCatalog(names map[int]string) Option {
	return func(o *options) {
		o.catalog = names
	}
}

// WithCatalogFile loads the event catalog from a YAML file of the form
// "events: {id: name}". It takes precedence over WithCatalog.
func WithCatalogFile(path string) Option {
	return func(o *options) {
		o.catalogFile = path
	}
}
