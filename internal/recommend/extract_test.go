package recommend

import "testing"

func TestExtractObject_BareObject(t *testing.T) {
	got, err := ExtractObject(`{"recommendations": []}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"recommendations": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObject_JSONFence(t *testing.T) {
	raw := "```json\n{\"recommendations\": []}\n```"
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"recommendations": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObject_BareFence(t *testing.T) {
	raw := "```\n{\"recommendations\": []}\n```"
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"recommendations": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObject_SurroundingProse(t *testing.T) {
	raw := "Sure! Here are your recommendations:\n{\"recommendations\": [{\"title\": \"Heat\"}]}\nEnjoy!"
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"recommendations": [{"title": "Heat"}]}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObject_BracesInsideStrings(t *testing.T) {
	raw := `prose {"recommendations": [{"title": "The } Movie {", "description": "has \"quotes\" and } braces"}]} trailing`
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"recommendations": [{"title": "The } Movie {", "description": "has \"quotes\" and } braces"}]}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractObject_UnclosedBraceSkipped(t *testing.T) {
	// The stray { in prose never closes; the real object after it should win.
	raw := `note: use { carefully. {"recommendations": []}`
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"recommendations": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObject_NoObject(t *testing.T) {
	if _, err := ExtractObject("I cannot recommend any movies today."); err == nil {
		t.Fatal("expected an error for a response with no JSON object")
	}
}

func TestStripFences_NoFence(t *testing.T) {
	got := StripFences("  {\"a\": 1}  ")
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestStripFences_FenceOnSameLineAsBrace(t *testing.T) {
	// No language tag and the object starts right after the fence marker.
	got := StripFences("```{\"a\": 1}```")
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}
