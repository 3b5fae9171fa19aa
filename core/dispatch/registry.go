package dispatch

import "github.com/cavusmuhammed68/ICC-IEEE/core/factory"

var rateRegistry = factory.NewRegistry[RateSelector]()

// RegisterRateSelector adds a rate strategy factory identified by name.
func RegisterRateSelector(name string, f factory.Factory[RateSelector]) error {
	return rateRegistry.Register(name, f)
}

// NewRateSelector creates a RateSelector from its module configuration.
func NewRateSelector(cfg factory.ModuleConfig) (RateSelector, error) {
	return rateRegistry.Create(cfg)
}

func init() {
	_ = RegisterRateSelector("fixed", func(map[string]any) (RateSelector, error) {
		return FixedRate{}, nil
	})
	_ = RegisterRateSelector("price_aware", func(conf map[string]any) (RateSelector, error) {
		r := DefaultPriceAwareRate()
		if err := factory.Decode(conf, &r); err != nil {
			return nil, err
		}
		return r, nil
	})
	_ = RegisterRateSelector("step_cap", func(conf map[string]any) (RateSelector, error) {
		c := StepCap{KW: 0.5}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return c, nil
	})
}
