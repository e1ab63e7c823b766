// Package tween interpolates numeric vectors over simulated time.
package tween

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownEasing is returned for easing names outside the catalog.
var ErrUnknownEasing = errors.New("unknown easing")

// Easing names an easing curve as "Family.Variant", e.g. "Cubic.Out".
type Easing string

// Func maps normalized progress in [0,1] to eased progress.
type Func func(k float64) float64

const (
	LinearNone Easing = "Linear.None"

	QuadraticIn    Easing = "Quadratic.In"
	QuadraticOut   Easing = "Quadratic.Out"
	QuadraticInOut Easing = "Quadratic.InOut"

	CubicIn    Easing = "Cubic.In"
	CubicOut   Easing = "Cubic.Out"
	CubicInOut Easing = "Cubic.InOut"

	QuarticIn    Easing = "Quartic.In"
	QuarticOut   Easing = "Quartic.Out"
	QuarticInOut Easing = "Quartic.InOut"

	QuinticIn    Easing = "Quintic.In"
	QuinticOut   Easing = "Quintic.Out"
	QuinticInOut Easing = "Quintic.InOut"

	SinusoidalIn    Easing = "Sinusoidal.In"
	SinusoidalOut   Easing = "Sinusoidal.Out"
	SinusoidalInOut Easing = "Sinusoidal.InOut"

	ExponentialIn    Easing = "Exponential.In"
	ExponentialOut   Easing = "Exponential.Out"
	ExponentialInOut Easing = "Exponential.InOut"

	CircularIn    Easing = "Circular.In"
	CircularOut   Easing = "Circular.Out"
	CircularInOut Easing = "Circular.InOut"

	ElasticIn    Easing = "Elastic.In"
	ElasticOut   Easing = "Elastic.Out"
	ElasticInOut Easing = "Elastic.InOut"

	BackIn    Easing = "Back.In"
	BackOut   Easing = "Back.Out"
	BackInOut Easing = "Back.InOut"

	BounceIn    Easing = "Bounce.In"
	BounceOut   Easing = "Bounce.Out"
	BounceInOut Easing = "Bounce.InOut"
)

// Name joins a family and variant into an Easing, e.g. Name("Cubic", "Out").
func Name(family, variant string) Easing {
	return Easing(family + "." + variant)
}

// Split returns the family and variant parts.
func (e Easing) Split() (family, variant string) {
	family, variant, _ = strings.Cut(string(e), ".")
	return family, variant
}

var catalog = map[Easing]Func{
	LinearNone: func(k float64) float64 { return k },

	QuadraticIn:  func(k float64) float64 { return k * k },
	QuadraticOut: func(k float64) float64 { return k * (2 - k) },
	QuadraticInOut: func(k float64) float64 {
		k *= 2
		if k < 1 {
			return 0.5 * k * k
		}
		k--
		return -0.5 * (k*(k-2) - 1)
	},

	CubicIn: func(k float64) float64 { return k * k * k },
	CubicOut: func(k float64) float64 {
		k--
		return k*k*k + 1
	},
	CubicInOut: func(k float64) float64 {
		k *= 2
		if k < 1 {
			return 0.5 * k * k * k
		}
		k -= 2
		return 0.5 * (k*k*k + 2)
	},

	QuarticIn: func(k float64) float64 { return k * k * k * k },
	QuarticOut: func(k float64) float64 {
		k--
		return 1 - k*k*k*k
	},
	QuarticInOut: func(k float64) float64 {
		k *= 2
		if k < 1 {
			return 0.5 * k * k * k * k
		}
		k -= 2
		return -0.5 * (k*k*k*k - 2)
	},

	QuinticIn: func(k float64) float64 { return k * k * k * k * k },
	QuinticOut: func(k float64) float64 {
		k--
		return k*k*k*k*k + 1
	},
	QuinticInOut: func(k float64) float64 {
		k *= 2
		if k < 1 {
			return 0.5 * k * k * k * k * k
		}
		k -= 2
		return 0.5 * (k*k*k*k*k + 2)
	},

	SinusoidalIn:    func(k float64) float64 { return 1 - math.Cos(k*math.Pi/2) },
	SinusoidalOut:   func(k float64) float64 { return math.Sin(k * math.Pi / 2) },
	SinusoidalInOut: func(k float64) float64 { return 0.5 * (1 - math.Cos(math.Pi*k)) },

	ExponentialIn: func(k float64) float64 {
		if k == 0 {
			return 0
		}
		return math.Pow(1024, k-1)
	},
	ExponentialOut: func(k float64) float64 {
		if k == 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*k)
	},
	ExponentialInOut: func(k float64) float64 {
		if k == 0 || k == 1 {
			return k
		}
		k *= 2
		if k < 1 {
			return 0.5 * math.Pow(1024, k-1)
		}
		return 0.5 * (2 - math.Pow(2, -10*(k-1)))
	},

	CircularIn: func(k float64) float64 { return 1 - math.Sqrt(1-k*k) },
	CircularOut: func(k float64) float64 {
		k--
		return math.Sqrt(1 - k*k)
	},
	CircularInOut: func(k float64) float64 {
		k *= 2
		if k < 1 {
			return -0.5 * (math.Sqrt(1-k*k) - 1)
		}
		k -= 2
		return 0.5 * (math.Sqrt(1-k*k) + 1)
	},

	ElasticIn: func(k float64) float64 {
		if k == 0 || k == 1 {
			return k
		}
		return -math.Pow(2, 10*(k-1)) * math.Sin((k-1.1)*5*math.Pi)
	},
	ElasticOut: func(k float64) float64 {
		if k == 0 || k == 1 {
			return k
		}
		return math.Pow(2, -10*k)*math.Sin((k-0.1)*5*math.Pi) + 1
	},
	ElasticInOut: func(k float64) float64 {
		if k == 0 || k == 1 {
			return k
		}
		k *= 2
		if k < 1 {
			return -0.5 * math.Pow(2, 10*(k-1)) * math.Sin((k-1.1)*5*math.Pi)
		}
		return 0.5*math.Pow(2, -10*(k-1))*math.Sin((k-1.1)*5*math.Pi) + 1
	},

	BackIn: func(k float64) float64 {
		const s = 1.70158
		return k * k * ((s+1)*k - s)
	},
	BackOut: func(k float64) float64 {
		const s = 1.70158
		k--
		return k*k*((s+1)*k+s) + 1
	},
	BackInOut: func(k float64) float64 {
		const s = 1.70158 * 1.525
		k *= 2
		if k < 1 {
			return 0.5 * (k * k * ((s+1)*k - s))
		}
		k -= 2
		return 0.5 * (k*k*((s+1)*k+s) + 2)
	},

	BounceIn:  bounceIn,
	BounceOut: bounceOut,

	BounceInOut: func(k float64) float64 {
		if k < 0.5 {
			return bounceIn(k*2) * 0.5
		}
		return bounceOut(k*2-1)*0.5 + 0.5
	},
}

func bounceOut(k float64) float64 {
	switch {
	case k < 1/2.75:
		return 7.5625 * k * k
	case k < 2/2.75:
		k -= 1.5 / 2.75
		return 7.5625*k*k + 0.75
	case k < 2.5/2.75:
		k -= 2.25 / 2.75
		return 7.5625*k*k + 0.9375
	default:
		k -= 2.625 / 2.75
		return 7.5625*k*k + 0.984375
	}
}

func bounceIn(k float64) float64 {
	return 1 - bounceOut(1-k)
}

// ParseEasing looks up an easing curve by name.
func ParseEasing(name Easing) (Func, error) {
	fn, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, string(name))
	}
	return fn, nil
}

// MustEasing is like ParseEasing but panics on unknown names.
func MustEasing(name Easing) Func {
	fn, err := ParseEasing(name)
	if err != nil {
		panic(err)
	}
	return fn
}

// Catalog returns every known easing name.
func Catalog() []Easing {
	names := make([]Easing, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}
