package transform

// ImportKind says how a mapped component reaches the generated module.
type ImportKind int

const (
	NoImport ImportKind = iota
	NativeImport
	InternalImport
)

// Component is the web/React replacement for a mini-program tag.
type Component struct {
	Name   string
	Import ImportKind
}

var componentMap = map[string]Component{
	"text":        {"span", NoImport},
	"view":        {"div", NoImport},
	"stack":       {"div", NoImport},
	"block":       {"div", NoImport},
	"web-view":    {"iframe", NoImport},
	"scroll-view": {"div", NoImport},

	"button":         {"Button", NativeImport},
	"checkbox":       {"Checkbox", NativeImport},
	"icon":           {"Icon", NativeImport},
	"progress":       {"Progress", NativeImport},
	"radio":          {"Radio", NativeImport},
	"switch":         {"Switch", NativeImport},
	"checkbox-group": {"CheckboxGroup", NativeImport},
	"label":          {"Label", NativeImport},
	"radio-group":    {"RadioGroup", NativeImport},

	"image":       {"Image", InternalImport},
	"slider":      {"Slider", InternalImport},
	"textarea":    {"Textarea", InternalImport},
	"swiper":      {"Swiper", InternalImport},
	"swiper-item": {"SwiperItem", InternalImport},
	"rich-text":   {"RichText", InternalImport},
	"audio":       {"Audio", InternalImport},
	"picker":      {"Picker", InternalImport},
}

// LookupComponent maps a tag name to its replacement.
func LookupComponent(tag string) (Component, bool) {
	c, ok := componentMap[tag]
	return c, ok
}

// nameSet is an insertion-ordered set of tag names.
type nameSet struct {
	order []string
	seen  map[string]struct{}
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]struct{})}
}

func (s *nameSet) Add(name string) bool {
	if _, ok := s.seen[name]; ok {
		return false
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
	return true
}

func (s *nameSet) Names() []string {
	return s.order
}
