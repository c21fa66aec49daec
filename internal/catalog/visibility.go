package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ecoroot/internal/model"
)

var (
	ErrRoleNotPermitted = errors.New("challenge is not available for this role")
	ErrFestivalInactive = errors.New("festival challenge is not active")
	ErrUnknownKind      = errors.New("unknown challenge kind")
)

type Eligibility struct {
	Visible  bool
	Joinable bool
	Active   bool
	// Reason is set when Joinable is false.
	Reason error
}

// Evaluate decides whether a role may see and join a challenge on the given day.
func Evaluate(ch model.Challenge, role model.Role, now time.Time) Eligibility {
	switch ch.Kind {
	case model.KindRegular:
		if role != model.RoleStudent {
			return Eligibility{Active: true, Reason: ErrRoleNotPermitted}
		}
		return Eligibility{Visible: true, Joinable: true, Active: true}

	case model.KindFestival:
		active := ch.Festival != nil && ch.Festival.IsActive(now)
		if role != model.RoleStudent {
			return Eligibility{Active: active, Reason: ErrRoleNotPermitted}
		}
		if !active {
			return Eligibility{Visible: true, Reason: ErrFestivalInactive}
		}
		return Eligibility{Visible: true, Joinable: true, Active: true}

	case model.KindTeacher:
		if role != model.RoleTeacher {
			return Eligibility{Active: true, Reason: ErrRoleNotPermitted}
		}
		return Eligibility{Visible: true, Joinable: true, Active: true}

	default:
		return Eligibility{Reason: fmt.Errorf("%w: %q", ErrUnknownKind, ch.Kind)}
	}
}

// CheckJoin returns the reason a role cannot join, or nil.
func CheckJoin(ch model.Challenge, role model.Role, now time.Time) error {
	e := Evaluate(ch, role, now)
	if !e.Joinable {
		return e.Reason
	}
	return nil
}

type Filter struct {
	Category     string
	Difficulty   model.Difficulty
	Search       string
	SortByPoints bool
}

type Listing struct {
	Challenge model.Challenge
	Active    bool
	Joinable  bool
}

// List returns the challenges visible to role, non-festival first.
func (c *Catalog) List(role model.Role, now time.Time, f Filter) []Listing {
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Listing, 0, len(c.challenges))
	for _, ch := range c.challenges {
		e := Evaluate(ch, role, now)
		if !e.Visible {
			continue
		}
		if f.Category != "" && ch.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && ch.Difficulty != f.Difficulty {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(ch.Title), query) {
			continue
		}
		out = append(out, Listing{Challenge: ch, Active: e.Active, Joinable: e.Joinable})
	}

	sort.SliceStable(out, func(i, j int) bool {
		fi := out[i].Challenge.Kind == model.KindFestival
		fj := out[j].Challenge.Kind == model.KindFestival
		if fi != fj {
			return !fi
		}
		if f.SortByPoints {
			return out[i].Challenge.Points > out[j].Challenge.Points
		}
		return false
	})

	return out
}

// Categories returns the distinct categories in document order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ch := range c.challenges {
		if _, ok := seen[ch.Category]; ok {
			continue
		}
		seen[ch.Category] = struct{}{}
		out = append(out, ch.Category)
	}
	return out
}
