package playback

import (
	"phimhub/models"
)

// Technology is one playback stack the client can run. The engine never
// branches on a concrete technology; it only asks the contract questions
// below and walks the fallback chain.
type Technology interface {
	Name() string
	// CanPresent reports whether the source carries the kind of link this
	// stack plays.
	CanPresent(src models.PlaybackSource) bool
	// DeadEnd marks the last-resort stack. A fatal error on a dead-end
	// technology exhausts the session; there is nothing simpler below it.
	DeadEnd() bool
}

// manifestTechnology is an HLS-capable player stack.
type manifestTechnology struct {
	name string
}

func (t manifestTechnology) Name() string { return t.name }
func (t manifestTechnology) CanPresent(src models.PlaybackSource) bool {
	return src.ManifestURL != ""
}
func (t manifestTechnology) DeadEnd() bool { return false }

// embedTechnology is the universally-compatible iframe fallback.
type embedTechnology struct{}

func (embedTechnology) Name() string { return TechEmbed }
func (embedTechnology) CanPresent(src models.PlaybackSource) bool {
	return src.EmbedURL != ""
}
func (embedTechnology) DeadEnd() bool { return true }

// Technology names. The first four form the automatic fallback chain;
// oplayer and reactplayer are manual-selection players kept outside it.
const (
	TechXGPlayer = "xgplayer"
	TechShaka    = "shaka"
	TechVideoJS  = "videojs"
	TechEmbed    = "embed"

	TechOPlayer     = "oplayer"
	TechReactPlayer = "reactplayer"
)

// DefaultChain is the fixed fallback order. Manifest players first, from
// most capable to most conservative, with the embed dead-end last.
func DefaultChain() []Technology {
	return []Technology{
		manifestTechnology{name: TechXGPlayer},
		manifestTechnology{name: TechShaka},
		manifestTechnology{name: TechVideoJS},
		embedTechnology{},
	}
}

// ManualTechnologies are selectable by name but never entered automatically.
// A fatal error on one of them re-enters the chain at the top instead of
// advancing from where the chain left off.
func ManualTechnologies() []Technology {
	return []Technology{
		manifestTechnology{name: TechOPlayer},
		manifestTechnology{name: TechReactPlayer},
	}
}

// chainIndex returns the position of name in chain, or -1.
func chainIndex(chain []Technology, name string) int {
	for i, t := range chain {
		if t.Name() == name {
			return i
		}
	}
	return -1
}
