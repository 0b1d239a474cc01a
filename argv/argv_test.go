package argv

import (
	"reflect"
	"testing"
)

func TestSplitRespectsParensAndQuotes(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b, c", []string{"a", "b", "c"}},
		{"f(a, b), c", []string{"f(a, b)", "c"}},
		{`"a, b", c`, []string{`"a, b"`, "c"}},
		{"'x, y', z", []string{"'x, y'", "z"}},
	}
	for _, c := range cases {
		got := Split(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Split(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestWordsHonorsQuotes(t *testing.T) {
	got := Words(`foo "bar baz" qux`)
	want := []string{"foo", `"bar baz"`, "qux"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %#v, want %#v", got, want)
	}
}
