package util

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

var eases = map[string]func(float64) float64{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"inquart":      ease.InQuart,
	"outquart":     ease.OutQuart,
	"inoutquart":   ease.InOutQuart,
	"inquint":      ease.InQuint,
	"outquint":     ease.OutQuint,
	"inoutquint":   ease.InOutQuint,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"inexpo":       ease.InExpo,
	"outexpo":      ease.OutExpo,
	"inoutexpo":    ease.InOutExpo,
	"incirc":       ease.InCirc,
	"outcirc":      ease.OutCirc,
	"inoutcirc":    ease.InOutCirc,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"inbounce":     ease.InBounce,
	"outbounce":    ease.OutBounce,
	"inoutbounce":  ease.InOutBounce,
}

// Ease looks up an easing curve by name, ignoring case, dashes and underscores, so
// "InOutQuad", "in-out-quad" and "in_out_quad" are the same curve. An empty name is
// linear.
func Ease(name string) (func(float64) float64, error) {
	if name == "" {
		return ease.Linear, nil
	}

	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	fn, ok := eases[key]
	if !ok {
		return nil, fmt.Errorf("unknown ease %q", name)
	}
	return fn, nil
}

// EaseNames lists the known curves.
func EaseNames() []string {
	names := make([]string, 0, len(eases))
	for name := range eases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
