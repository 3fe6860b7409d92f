package tagger

import "testing"

func TestTagReturnsLabelForAnyWord(t *testing.T) {
	tg := New()

	for _, word := range []string{"dog", "running", "quickly", "beautiful", "xyzzy"} {
		if label := tg.Tag(word); label == "" {
			t.Errorf("Tag(%q) returned an empty label", word)
		}
	}
}

func TestTagEmptyWordIsUnknown(t *testing.T) {
	tg := New()

	if label := tg.Tag(""); label != Unknown {
		t.Errorf("Tag of empty word: got %q, want %q", label, Unknown)
	}
}

func TestStatic(t *testing.T) {
	tg := Static("NN")

	if label := tg.Tag("anything"); label != "NN" {
		t.Errorf("Static tagger: got %q, want NN", label)
	}
}

func TestFuncAdapter(t *testing.T) {
	tg := Func(func(word string) string { return "VB-" + word })

	if label := tg.Tag("run"); label != "VB-run" {
		t.Errorf("Func adapter: got %q, want VB-run", label)
	}
}
