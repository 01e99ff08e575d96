package theme

import (
	"slices"
	"testing"

	"todoapp/internal/storage"
)

func fixed(light, ok bool) Preference {
	return func() (bool, bool) { return light, ok }
}

func TestInitializePrecedence(t *testing.T) {
	cases := []struct {
		name   string
		stored string
		has    bool
		prefer Preference
		want   bool
	}{
		{"stored dark wins over light system", "false", true, fixed(true, true), false},
		{"stored light wins over dark system", "true", true, fixed(false, true), true},
		{"no stored value uses system dark", "", false, fixed(false, true), false},
		{"malformed stored value uses system", "maybe", true, fixed(false, true), false},
		{"nothing available defaults to light", "", false, fixed(false, false), true},
		{"malformed and no system defaults to light", "{}", true, fixed(false, false), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kv := storage.NewMemory()
			if tc.has {
				kv.Save(StorageKey, []byte(tc.stored))
			}
			c := New(kv, WithPreference(tc.prefer))
			if got := c.Initialize(); got != tc.want {
				t.Fatalf("Initialize() = %v, want %v", got, tc.want)
			}
			if c.Light() != tc.want {
				t.Fatalf("Light() = %v after Initialize", c.Light())
			}
		})
	}
}

func TestModeOverridesTerminal(t *testing.T) {
	c := New(storage.NewMemory(), WithPreference(fixed(true, true)), WithMode(ModeDark))
	if c.Initialize() {
		t.Fatal("dark mode override ignored")
	}

	kv := storage.NewMemory()
	kv.Save(StorageKey, []byte("true"))
	c = New(kv, WithMode(ModeDark))
	if !c.Initialize() {
		t.Fatal("stored flag must win over configured mode")
	}
}

func TestSetPersistsAndNotifies(t *testing.T) {
	kv := storage.NewMemory()
	c := New(kv, WithPreference(fixed(true, true)))
	c.Initialize()

	var marks []bool
	stop := c.Subscribe(func(light bool) { marks = append(marks, light) })

	c.SetDark()
	if v, _, _ := kv.Load(StorageKey); string(v) != "false" {
		t.Fatalf("stored %q after SetDark", v)
	}
	c.SetLight()
	if v, _, _ := kv.Load(StorageKey); string(v) != "true" {
		t.Fatalf("stored %q after SetLight", v)
	}
	c.Toggle()
	if c.Light() {
		t.Fatal("toggle from light should go dark")
	}

	stop()
	c.Toggle()

	want := []bool{false, true, false}
	if len(marks) != len(want) {
		t.Fatalf("got notifications %v, want %v", marks, want)
	}
	for i := range want {
		if marks[i] != want[i] {
			t.Fatalf("got notifications %v, want %v", marks, want)
		}
	}

	fresh := New(kv, WithPreference(fixed(false, false)))
	if !fresh.Initialize() {
		t.Fatal("fresh controller did not read persisted light flag")
	}
}

func TestSubscribersNotifiedInOrder(t *testing.T) {
	c := New(storage.NewMemory(), WithPreference(fixed(true, true)))
	c.Initialize()

	var got []string
	c.Subscribe(func(bool) { got = append(got, "first") })
	stop := c.Subscribe(func(bool) { got = append(got, "second") })
	c.Subscribe(func(bool) { got = append(got, "third") })

	c.Toggle()
	stop()
	stop()
	c.Toggle()

	want := []string{"first", "second", "third", "first", "third"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeSystem, "Light": ModeLight, " dark ": ModeDark, "system": ModeSystem} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("sepia"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
