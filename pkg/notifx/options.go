package notifx

// SendOptions are the provider settings of one send.
type SendOptions struct {
	// Tags are attached to the message where the provider supports it.
	Tags map[string]string
	// ConfigurationSet selects the SES configuration set.
	ConfigurationSet string
}

type Option func(*SendOptions)

// WithTag adds one tag. Later tags with the same key win.
func WithTag(key, value string) Option {
	return func(o *SendOptions) {
		if o.Tags == nil {
			o.Tags = map[string]string{}
		}
		o.Tags[key] = value
	}
}

func WithConfigurationSet(name string) Option {
	return func(o *SendOptions) { o.ConfigurationSet = name }
}

// SendOptionsFrom folds opts for providers.
func SendOptionsFrom(opts ...Option) SendOptions {
	var so SendOptions
	for _, o := range opts {
		o(&so)
	}
	return so
}
