package event

// Context narrows a query to a place and situation. Zero values match
// only events that declare no filter for that dimension.
type Context struct {
	Location string
	Faction  string
	Season   string
	Region   string
	Tags     []string
}

// Matches reports whether the context satisfies the filters: every
// declared dimension must match, an absent dimension always matches.
func (f Filters) Matches(ctx Context) bool {
	if !matchOne(f.Locations, ctx.Location) {
		return false
	}
	if !matchOne(f.Factions, ctx.Faction) {
		return false
	}
	if !matchOne(f.Seasons, ctx.Season) {
		return false
	}
	if !matchOne(f.Regions, ctx.Region) {
		return false
	}
	for _, tag := range f.Tags {
		if !contains(ctx.Tags, tag) {
			return false
		}
	}
	return true
}

func matchOne(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	return contains(allowed, value)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
