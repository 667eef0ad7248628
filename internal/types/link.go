package types

// Link positions within the page layout.
const (
	PositionNavigation = "navigation"
	PositionContent    = "content"
)

// LinkEdge is one anchor from a crawled page to a resolved target. Edges are
// folded into per-page statistics and are not persisted as a graph.
type LinkEdge struct {
	Source      string
	Target      string
	AnchorText  string
	Title       string
	Rel         []string
	TargetAttr  string
	IsImageLink bool
	Position    string
	Internal    bool
}

// IsNofollow reports whether the anchor carries rel=nofollow.
func (e LinkEdge) IsNofollow() bool {
	for _, r := range e.Rel {
		if r == "nofollow" {
			return true
		}
	}
	return false
}
