package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentType is the closed set of portal content kinds.
type ContentType int

const (
	TypeArticle ContentType = iota
	TypeVideo
	TypeGuide
	TypeRecipe
	TypeWorksheet
	TypeWebinar

	contentTypeCount
)

// TypeDescriptor is what the portal needs to render a content type.
type TypeDescriptor struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Verb  string `json:"verb"`
}

var descriptors = [...]TypeDescriptor{
	TypeArticle:   {Type: "article", Label: "Article", Icon: "file-text", Verb: "Read"},
	TypeVideo:     {Type: "video", Label: "Video", Icon: "play-circle", Verb: "Watch"},
	TypeGuide:     {Type: "guide", Label: "Guide", Icon: "book-open", Verb: "Read"},
	TypeRecipe:    {Type: "recipe", Label: "Recipe", Icon: "utensils", Verb: "Cook"},
	TypeWorksheet: {Type: "worksheet", Label: "Worksheet", Icon: "clipboard", Verb: "Download"},
	TypeWebinar:   {Type: "webinar", Label: "Webinar", Icon: "video", Verb: "Join"},
}

// Adding a ContentType without a descriptor (or the reverse) fails to compile.
var (
	_ [len(descriptors) - int(contentTypeCount)]struct{}
	_ [int(contentTypeCount) - len(descriptors)]struct{}
)

var typesByName = func() map[string]ContentType {
	m := make(map[string]ContentType, len(descriptors))
	for i, d := range descriptors {
		m[d.Type] = ContentType(i)
	}
	return m
}()

func ParseContentType(s string) (ContentType, error) {
	t, ok := typesByName[s]
	if !ok {
		return 0, fmt.Errorf("unknown content type %q", s)
	}
	return t, nil
}

func (t ContentType) Valid() bool { return t >= 0 && t < contentTypeCount }

func (t ContentType) Descriptor() TypeDescriptor {
	if !t.Valid() {
		return TypeDescriptor{}
	}
	return descriptors[t]
}

func (t ContentType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ContentType(%d)", int(t))
	}
	return descriptors[t].Type
}

func (t ContentType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid content type %d", int(t))
	}
	return json.Marshal(descriptors[t].Type)
}

func (t *ContentType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseContentType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Types lists every descriptor in declaration order.
func Types() []TypeDescriptor {
	out := make([]TypeDescriptor, len(descriptors))
	copy(out, descriptors[:])
	return out
}

// Item is one piece of educational content in a portal category.
type Item struct {
	ID          uuid.UUID   `json:"id"`
	Category    string      `json:"category"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url,omitempty"`
	Tags        []string    `json:"tags"`
	ViewCount   int64       `json:"view_count"`
	CreatedAt   time.Time   `json:"created_at"`
}
