package upload

import "github.com/radif/imageproc/internal/transform"

// OriginalEndpoint is the endpoint name reported for unresized conversions.
const OriginalEndpoint = "original"

// Entry is one derivative of a profile: a key suffix and its target size.
type Entry struct {
	Suffix string
	Spec   transform.SizeSpec
}

// Profile is a named, ordered set of derivatives produced from one upload.
type Profile struct {
	Name    string
	Entries []Entry
}

// Suffixes returns the profile's suffixes in processing order.
func (p Profile) Suffixes() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Suffix
	}
	return out
}

// Profiles is a read-only lookup table of profiles keyed by name.
type Profiles struct {
	byName map[string]Profile
	order  []string
}

// NewProfiles builds a lookup table. Later duplicates of a name replace earlier ones.
func NewProfiles(profiles ...Profile) Profiles {
	t := Profiles{byName: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if _, dup := t.byName[p.Name]; !dup {
			t.order = append(t.order, p.Name)
		}
		t.byName[p.Name] = p
	}
	return t
}

// Lookup returns the profile registered under name.
func (t Profiles) Lookup(name string) (Profile, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// Names returns the registered profile names in registration order.
func (t Profiles) Names() []string {
	return append([]string(nil), t.order...)
}

// All returns every profile in registration order.
func (t Profiles) All() []Profile {
	out := make([]Profile, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.byName[n])
	}
	return out
}

// DefaultProfiles returns the fixed endpoint table served by the API.
func DefaultProfiles() Profiles {
	fit, width := transform.Fit, transform.Width
	return NewProfiles(
		Profile{Name: "64", Entries: []Entry{
			{"", fit(64, 64)},
			{"@2x", fit(128, 128)},
			{"@3x", fit(185, 185)},
			{"@4x", fit(256, 256)},
		}},
		Profile{Name: "80", Entries: []Entry{
			{"", fit(80, 80)},
			{"@2x", fit(120, 120)},
		}},
		Profile{Name: "100", Entries: []Entry{
			{"", width(100)},
			{"@2x", width(200)},
			{"@3x", width(600)},
		}},
		Profile{Name: "158", Entries: []Entry{
			{"", fit(158, 158)},
			{"@2x", fit(316, 316)},
			{"@3x", fit(474, 474)},
		}},
		Profile{Name: "400", Entries: []Entry{
			{"", width(400)},
			{"@2x", width(800)},
			{"@3x", width(1200)},
		}},
		Profile{Name: "600", Entries: []Entry{
			{"", width(600)},
			{"@2x", width(1200)},
			{"@3x", width(1800)},
		}},
	)
}
