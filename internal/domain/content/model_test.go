package content

import (
	"encoding/json"
	"testing"
)

func TestDescriptors_CompleteAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := ContentType(0); i < contentTypeCount; i++ {
		d := i.Descriptor()
		if d.Type == "" || d.Label == "" || d.Icon == "" || d.Verb == "" {
			t.Errorf("content type %d has an incomplete descriptor %+v", i, d)
		}
		if seen[d.Type] {
			t.Errorf("duplicate content type name %q", d.Type)
		}
		seen[d.Type] = true
	}
	if len(Types()) != int(contentTypeCount) {
		t.Errorf("Types() returned %d entries", len(Types()))
	}
}

func TestParseContentType(t *testing.T) {
	for _, d := range Types() {
		ct, err := ParseContentType(d.Type)
		if err != nil {
			t.Fatalf("ParseContentType(%q): %v", d.Type, err)
		}
		if ct.String() != d.Type {
			t.Errorf("round trip mismatch %q -> %s", d.Type, ct)
		}
	}
	if _, err := ParseContentType("podcast"); err == nil {
		t.Error("expected unknown type to be rejected")
	}
}

func TestContentType_JSON(t *testing.T) {
	b, err := json.Marshal(TypeRecipe)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"recipe"` {
		t.Errorf("expected \"recipe\", got %s", b)
	}

	var ct ContentType
	if err := json.Unmarshal([]byte(`"webinar"`), &ct); err != nil || ct != TypeWebinar {
		t.Errorf("expected webinar, got %v (%v)", ct, err)
	}
	if err := json.Unmarshal([]byte(`"banner"`), &ct); err == nil {
		t.Error("expected unknown type to fail decoding")
	}
	if _, err := json.Marshal(ContentType(99)); err == nil {
		t.Error("expected out-of-range type to fail encoding")
	}
}

func TestContentType_InvalidDescriptor(t *testing.T) {
	if d := ContentType(-1).Descriptor(); d.Type != "" {
		t.Errorf("expected empty descriptor, got %+v", d)
	}
}
