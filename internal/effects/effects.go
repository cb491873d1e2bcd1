// Package effects merges the effect maps of concurrently active events
// into one resolved view. Each effect key has a fixed resolution
// strategy, and every resolved key carries provenance naming the events
// that contributed to it.
package effects

import (
	"sort"
	"strings"

	"github.com/louisbranch/almanac/internal/event"
)

// Strategy names how competing values for one effect key are combined.
type Strategy string

const (
	// StrategyMultiply takes the product of all contributing values.
	StrategyMultiply Strategy = "multiply"
	// StrategyAnyTrue resolves true when any contributor sets true.
	StrategyAnyTrue Strategy = "any_true"
	// StrategyDarkestWins picks the lowest light level contributed.
	StrategyDarkestWins Strategy = "darkest_wins"
	// StrategyLastWins picks the value from the highest-priority
	// contributor, ties broken by event id ascending.
	StrategyLastWins Strategy = "last_wins"
)

// Well-known effect keys.
const (
	KeyPriceMultGlobal    = "price_mult_global"
	KeyPriceMultTagPrefix = "price_mult_tag."
	KeyShopClosed         = "shop_closed"
	KeyRestockBlock       = "restock_block"
	KeyLightLevel         = "light_level"
	KeyUIBanner           = "ui_banner"
	KeyUITheme            = "ui_theme"
	KeySeasonSet          = "season_set"
)

// lightRanks orders light levels from darkest to brightest.
var lightRanks = map[string]int{
	"dark":   0,
	"dim":    1,
	"bright": 2,
}

// Resolved is the merged effect view for one day and context. Keys with
// no contributors are absent from all three maps.
type Resolved struct {
	Day     int
	Context event.Context

	Values map[string]any
	// CompetingEffects lists, per key, every contributing event id in
	// evaluation order, even when only one event contributed.
	CompetingEffects map[string][]string
	// ResolutionStrategies records which strategy resolved each key.
	ResolutionStrategies map[string]Strategy
}

type contribution struct {
	eventID  string
	priority int
	value    any
}

// StrategyFor returns the fixed strategy for an effect key. Keys outside
// the known set resolve last_wins.
func StrategyFor(key string) Strategy {
	switch {
	case key == KeyPriceMultGlobal, strings.HasPrefix(key, KeyPriceMultTagPrefix):
		return StrategyMultiply
	case key == KeyShopClosed, key == KeyRestockBlock:
		return StrategyAnyTrue
	case key == KeyLightLevel:
		return StrategyDarkestWins
	default:
		return StrategyLastWins
	}
}

// Resolve merges the effect maps of the active events. Events are
// visited in slice order, so per-key provenance follows evaluation
// order.
func Resolve(day int, active []event.ActiveEvent, ctx event.Context) Resolved {
	contributions := make(map[string][]contribution)
	var keys []string

	for _, ev := range active {
		for key, value := range ev.Effects {
			if _, seen := contributions[key]; !seen {
				keys = append(keys, key)
			}
			contributions[key] = append(contributions[key], contribution{
				eventID:  ev.EventID,
				priority: ev.Priority,
				value:    value,
			})
		}
	}
	sort.Strings(keys)

	resolved := Resolved{
		Day:                  day,
		Context:              ctx,
		Values:               make(map[string]any, len(keys)),
		CompetingEffects:     make(map[string][]string, len(keys)),
		ResolutionStrategies: make(map[string]Strategy, len(keys)),
	}
	for _, key := range keys {
		contribs := contributions[key]
		strategy := StrategyFor(key)
		resolved.Values[key] = combine(strategy, contribs)
		ids := make([]string, len(contribs))
		for i, c := range contribs {
			ids[i] = c.eventID
		}
		resolved.CompetingEffects[key] = ids
		resolved.ResolutionStrategies[key] = strategy
	}
	return resolved
}

func combine(strategy Strategy, contribs []contribution) any {
	switch strategy {
	case StrategyMultiply:
		product := 1.0
		for _, c := range contribs {
			if f, ok := toFloat(c.value); ok {
				product *= f
			}
		}
		return product
	case StrategyAnyTrue:
		for _, c := range contribs {
			if b, ok := c.value.(bool); ok && b {
				return true
			}
		}
		return false
	case StrategyDarkestWins:
		darkest := ""
		rank := len(lightRanks)
		for _, c := range contribs {
			s, ok := c.value.(string)
			if !ok {
				continue
			}
			if r, known := lightRanks[s]; known && r < rank {
				darkest, rank = s, r
			}
		}
		if darkest == "" {
			return contribs[0].value
		}
		return darkest
	default:
		winner := contribs[0]
		for _, c := range contribs[1:] {
			if c.priority > winner.priority ||
				(c.priority == winner.priority && c.eventID < winner.eventID) {
				winner = c
			}
		}
		return winner.value
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// PriceMultiplier is the combined price multiplier for an item carrying
// the given tags: the global multiplier times every matching tag
// multiplier. Absent keys contribute 1.
func (r Resolved) PriceMultiplier(tags ...string) float64 {
	mult := 1.0
	if f, ok := toFloat(r.Values[KeyPriceMultGlobal]); ok {
		mult *= f
	}
	for _, tag := range tags {
		if f, ok := toFloat(r.Values[KeyPriceMultTagPrefix+tag]); ok {
			mult *= f
		}
	}
	return mult
}

// ShopClosed reports whether any active event closed shops.
func (r Resolved) ShopClosed() bool {
	b, _ := r.Values[KeyShopClosed].(bool)
	return b
}

// RestockBlocked reports whether restocking is blocked.
func (r Resolved) RestockBlocked() bool {
	b, _ := r.Values[KeyRestockBlock].(bool)
	return b
}

// LightLevel returns the resolved light level, or fallback when no
// active event set one.
func (r Resolved) LightLevel(fallback string) string {
	if s, ok := r.Values[KeyLightLevel].(string); ok {
		return s
	}
	return fallback
}

// Banner returns the resolved UI banner text, empty when unset.
func (r Resolved) Banner() string {
	s, _ := r.Values[KeyUIBanner].(string)
	return s
}
