package scanner

// DefaultStrategy runs when no registered strategy handles a page.
// It never applies on its own and never extracts an entity.
type DefaultStrategy struct{}

var _ Strategy = DefaultStrategy{}

func (DefaultStrategy) Name() string { return "default" }

func (DefaultStrategy) AppliesTo(Params) bool { return false }

// DomainKey returns the main domain, or the registrable domain when the main
// domain is unknown.
func (DefaultStrategy) DomainKey(params Params) string {
	if params.MainDomain != "" {
		return params.MainDomain
	}
	return params.Domain
}
