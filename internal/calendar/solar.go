package calendar

// Default solar times when a calendar defines no seasons.
const (
	DefaultSunrise = 6 * 60
	DefaultSunset  = 18 * 60

	// twilightHalf is the half-width of the dawn and dusk windows.
	twilightHalf = 30

	minutesPerDay = 24 * 60
)

// SunState is the phase of the solar day.
type SunState string

const (
	SunNight SunState = "night"
	SunDawn  SunState = "dawn"
	SunDay   SunState = "day"
	SunDusk  SunState = "dusk"
)

// LightLevel is the ambient light implied by a sun state.
type LightLevel string

const (
	LightDark   LightLevel = "dark"
	LightDim    LightLevel = "dim"
	LightBright LightLevel = "bright"
)

// SolarTimes holds sunrise and sunset in minutes from midnight.
type SolarTimes struct {
	Sunrise int
	Sunset  int
}

// SeasonOn returns the season active on the absolute day, preferring
// seasons tagged with the given region and falling back to untagged
// seasons. The second result is false when no season applies.
func (d *Driver) SeasonOn(absoluteDay int, region string) (Season, bool) {
	if region != "" {
		if season, ok := d.activeSeason(absoluteDay, region); ok {
			return season, true
		}
	}
	return d.activeSeason(absoluteDay, "")
}

// activeSeason finds the latest season (among those with the exact region
// tag) whose start is on or before the date, wrapping to the last season
// of the previous year when the date precedes the first start.
func (d *Driver) activeSeason(absoluteDay int, region string) (Season, bool) {
	_, monthIndex, dayOfMonth, _ := d.decompose(absoluteDay)

	var best Season
	bestKey := -1
	found := false
	// Track the season latest in the year for wraparound.
	var last Season
	lastKey := -1

	for _, season := range d.def.Seasons {
		if season.Region != region {
			continue
		}
		key := season.StartMonth*64 + season.StartDay
		if key > lastKey {
			lastKey = key
			last = season
		}
		started := season.StartMonth < monthIndex ||
			(season.StartMonth == monthIndex && season.StartDay <= dayOfMonth)
		if started && key > bestKey {
			bestKey = key
			best = season
			found = true
		}
	}

	if found {
		return best, true
	}
	if lastKey >= 0 {
		return last, true
	}
	return Season{}, false
}

// SolarTimes returns sunrise and sunset for the day, degrading to the
// 06:00-18:00 default when the calendar defines no applicable season.
func (d *Driver) SolarTimes(absoluteDay int, region string) SolarTimes {
	season, ok := d.SeasonOn(absoluteDay, region)
	if !ok {
		return SolarTimes{Sunrise: DefaultSunrise, Sunset: DefaultSunset}
	}
	return SolarTimes{Sunrise: season.Sunrise, Sunset: season.Sunset}
}

// SunState returns the solar phase at a minute of the day. Dawn covers
// [sunrise-30, sunrise+30) and dusk covers [sunset-30, sunset+30), so the
// boundary nearer the twilight window belongs to it.
func (d *Driver) SunState(absoluteDay, minuteOfDay int, region string) SunState {
	times := d.SolarTimes(absoluteDay, region)
	switch {
	case minuteOfDay >= times.Sunrise-twilightHalf && minuteOfDay < times.Sunrise+twilightHalf:
		return SunDawn
	case minuteOfDay >= times.Sunset-twilightHalf && minuteOfDay < times.Sunset+twilightHalf:
		return SunDusk
	case minuteOfDay >= times.Sunrise+twilightHalf && minuteOfDay < times.Sunset-twilightHalf:
		return SunDay
	default:
		return SunNight
	}
}

// LightLevel maps the solar phase to ambient light: night is dark,
// twilight is dim, day is bright.
func (d *Driver) LightLevel(absoluteDay, minuteOfDay int, region string) LightLevel {
	switch d.SunState(absoluteDay, minuteOfDay, region) {
	case SunDay:
		return LightBright
	case SunDawn, SunDusk:
		return LightDim
	default:
		return LightDark
	}
}
