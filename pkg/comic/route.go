package comic

// DetailPathPrefix is the route prefix of the detail view.
const DetailPathPrefix = "/detail-comic/"

// RouteState is the state carried to the detail view.
type RouteState struct {
	Comic         Comic  `json:"comic"`
	ProcessedLink string `json:"processedLink"`
}

// DetailRoute is the navigation target produced when a card is selected.
// The slug only names the route; ProcessedLink identifies the comic.
type DetailRoute struct {
	Path  string     `json:"path"`
	State RouteState `json:"state"`
}

// Route builds the detail navigation handoff for c.
func (c Comic) Route() DetailRoute {
	return DetailRoute{
		Path: DetailPathPrefix + c.Slug,
		State: RouteState{
			Comic:         c,
			ProcessedLink: c.ProcessedLink,
		},
	}
}
