package template

import "testing"

// TestConditionalAndFilter mirrors spec.md §8 scenario 4.
func TestConditionalAndFilter(t *testing.T) {
	eng := NewEngine(16)
	src := `Hello {{ user | capitalize }}{% if admin %} (admin){% endif %}!`

	out, err := eng.Render(src, Context{"user": StringValue("alice"), "admin": BoolValue(true)})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Hello Alice (admin)!" {
		t.Fatalf("Render = %q, want %q", out, "Hello Alice (admin)!")
	}

	out, err = eng.Render(src, Context{"user": StringValue("alice"), "admin": BoolValue(false)})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Hello Alice!" {
		t.Fatalf("Render = %q, want %q", out, "Hello Alice!")
	}
}

// TestLoopWithFilter mirrors spec.md §8 scenario 5.
func TestLoopWithFilter(t *testing.T) {
	eng := NewEngine(16)
	src := "{% for f in fruits %}- {{f | upper}}\n{% endfor %}"

	out, err := eng.Render(src, Context{"fruits": SequenceValue{"apple", "pear"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "- APPLE\n- PEAR\n"
	if out != want {
		t.Fatalf("Render = %q, want %q", out, want)
	}
}

func TestLoopIndexIsOneBased(t *testing.T) {
	eng := NewEngine(16)
	src := "{% for f in fruits %}{{loop.index}}:{{f}} {% endfor %}"
	out, err := eng.Render(src, Context{"fruits": SequenceValue{"a", "b"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "1:a 2:b " {
		t.Fatalf("Render = %q, want %q", out, "1:a 2:b ")
	}
}

func TestUnknownVariableIsEmptyString(t *testing.T) {
	eng := NewEngine(16)
	out, err := eng.Render("[{{missing}}]", Context{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "[]" {
		t.Fatalf("Render = %q, want %q", out, "[]")
	}
}

func TestDefaultFilterOverridesEmptyString(t *testing.T) {
	eng := NewEngine(16)
	out, err := eng.Render(`[{{missing | default:"none"}}]`, Context{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "[none]" {
		t.Fatalf("Render = %q, want %q", out, "[none]")
	}
}

func TestUnknownFilterIsAnError(t *testing.T) {
	eng := NewEngine(16)
	_, err := eng.Render("{{x | frobnicate}}", Context{"x": StringValue("y")})
	if err != ErrUnknownFilter {
		t.Fatalf("err = %v, want ErrUnknownFilter", err)
	}
}

func TestUnbalancedIfIsParseError(t *testing.T) {
	_, err := Parse("{% if x %}no end", NewRegistry())
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestUnknownTagIsParseError(t *testing.T) {
	_, err := Parse("{% bogus %}", NewRegistry())
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestUnknownFilterFailsAtParseTime(t *testing.T) {
	_, err := Parse("{{x | frobnicate}}", NewRegistry())
	if err != ErrUnknownFilter {
		t.Fatalf("err = %v, want ErrUnknownFilter", err)
	}
}

func TestUnknownFilterNeverReachesCache(t *testing.T) {
	eng := NewEngine(4)
	src := "{{x | frobnicate}}"
	if _, err := eng.parse(src); err != ErrUnknownFilter {
		t.Fatalf("err = %v, want ErrUnknownFilter", err)
	}
	if _, ok := eng.cache.Get(src); ok {
		t.Fatal("a template that fails to parse must not be cached")
	}
}

func TestParseIsCachedBySourceBytes(t *testing.T) {
	eng := NewEngine(4)
	src := "{{x}}"
	first, err := eng.parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	second, err := eng.parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if &first[0] != &second[0] {
		t.Fatal("identical source bytes should hit the cache and return the same parsed slice")
	}
}

func TestRegisterFilter(t *testing.T) {
	eng := NewEngine(16)
	eng.RegisterFilter("shout", func(input string, _ *string) (string, error) {
		return input + "!!!", nil
	})
	out, err := eng.Render("{{x | shout}}", Context{"x": StringValue("hi")})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "hi!!!" {
		t.Fatalf("Render = %q, want %q", out, "hi!!!")
	}
}
