package mscopy

// CopierOption configures a Copier during creation.
//
// Example:
//
//	// Defaults: min reduction, GOMAXPROCS workers, GPU when registered
//	c := mscopy.NewCopier()
//
//	// Reversed-Z consumer, CPU only
//	c := mscopy.NewCopier(
//	    mscopy.WithPolicy(mscopy.ConservativePolicy(true)),
//	    mscopy.WithoutGPU(),
//	)
type CopierOption func(*copierOptions)

type copierOptions struct {
	policy  Policy
	workers int
	useGPU  bool
}

func defaultCopierOptions() copierOptions {
	return copierOptions{
		policy:  PolicyMin,
		workers: 0, // GOMAXPROCS
		useGPU:  true,
	}
}

// WithPolicy sets the downsample reduction policy.
func WithPolicy(p Policy) CopierOption {
	return func(o *copierOptions) {
		o.policy = p
	}
}

// WithWorkers sets the number of CPU workers. Zero or negative uses
// GOMAXPROCS.
func WithWorkers(n int) CopierOption {
	return func(o *copierOptions) {
		o.workers = n
	}
}

// WithoutGPU makes the Copier ignore any registered Dispatcher.
func WithoutGPU() CopierOption {
	return func(o *copierOptions) {
		o.useGPU = false
	}
}
