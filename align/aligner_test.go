package align

import (
	"errors"
	"reflect"
	"testing"
)

func modelOf(entries map[[2]string]int) *Model {
	tb := NewTable()
	for k, c := range entries {
		tb.Add(Joint(chars(k[0]), chars(k[1])), c)
	}
	return NewModel(tb)
}

func pair(src, tgt string) FragmentPair {
	return FragmentPair{Source: chars(src), Target: chars(tgt)}
}

func TestAlignEmptyModel(t *testing.T) {
	got, score, err := Align(chars("ab"), chars("xy"), NewModel(nil))
	if err != nil {
		t.Fatal(err)
	}
	want := Alignment{pair("ab", ""), pair("", "xy")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignment = %v, want %v", got, want)
	}
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestAlignEmptyInputs(t *testing.T) {
	model := modelOf(map[[2]string]int{{"a", "x"}: 3})
	tests := []struct {
		src, tgt string
		want     Alignment
	}{
		{"", "", Alignment{}},
		{"", "xy", Alignment{pair("", "xy")}},
		{"ab", "", Alignment{pair("ab", "")}},
	}
	for _, tt := range tests {
		got, score, err := Align(chars(tt.src), chars(tt.tgt), model)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Align(%q, %q) = %v, want %v", tt.src, tt.tgt, got, tt.want)
		}
		if score != 0 {
			t.Errorf("Align(%q, %q) score = %v, want 0", tt.src, tt.tgt, score)
		}
	}
}

func TestAlignOneToOne(t *testing.T) {
	model := modelOf(map[[2]string]int{{"a", "x"}: 3, {"b", "y"}: 3})
	got, score, err := Align(chars("ab"), chars("xy"), model)
	if err != nil {
		t.Fatal(err)
	}
	want := Alignment{pair("a", "x"), pair("b", "y")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignment = %v, want %v", got, want)
	}
	if score != 12 {
		t.Errorf("score = %v, want 12", score)
	}
}

func TestAlignMultiTokenFragment(t *testing.T) {
	model := modelOf(map[[2]string]int{{"ab", "x"}: 2})
	got, score, err := Align(chars("abc"), chars("xy"), model)
	if err != nil {
		t.Fatal(err)
	}
	want := Alignment{pair("ab", "x"), pair("c", ""), pair("", "y")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignment = %v, want %v", got, want)
	}
	if score != 6 {
		t.Errorf("score = %v, want 6", score)
	}
}

func TestAlignPrefersHeavierSegmentation(t *testing.T) {
	// ab/xy as one fragment weighs 4*5=20; a/x plus b/y weigh 2*2+2*2=8.
	model := modelOf(map[[2]string]int{{"a", "x"}: 2, {"b", "y"}: 2, {"ab", "xy"}: 5})
	got, score, err := Align(chars("ab"), chars("xy"), model)
	if err != nil {
		t.Fatal(err)
	}
	want := Alignment{pair("ab", "xy")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignment = %v, want %v", got, want)
	}
	if score != 20 {
		t.Errorf("score = %v, want 20", score)
	}
}

func TestAlignCoalescesGaps(t *testing.T) {
	model := modelOf(map[[2]string]int{{"a", "x"}: 4, {"d", "z"}: 4})
	got, _, err := Align(chars("abcd"), chars("xyyz"), model)
	if err != nil {
		t.Fatal(err)
	}
	want := Alignment{pair("a", "x"), pair("bc", ""), pair("", "yy"), pair("d", "z")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignment = %v, want %v", got, want)
	}
}

func TestAlignCoverageProperty(t *testing.T) {
	model := modelOf(map[[2]string]int{
		{"a", "x"}: 3, {"bc", "y"}: 2, {"c", "yz"}: 4, {"ab", "x"}: 2, {"d", "w"}: 5,
	})
	inputs := [][2]string{
		{"abcd", "xyzw"}, {"dcba", "wzyx"}, {"aaaa", "xx"}, {"", "xyz"}, {"bcd", ""},
		{"abcabc", "xyzxyz"}, {"q", "r"}, {"adad", "wxwx"},
	}
	for _, in := range inputs {
		src, tgt := chars(in[0]), chars(in[1])
		got, score, err := Align(src, tgt, model)
		if err != nil {
			t.Fatalf("Align(%q, %q): %v", in[0], in[1], err)
		}
		if !got.Sources().Equal(src) || !got.Targets().Equal(tgt) {
			t.Errorf("Align(%q, %q) = %v does not cover inputs", in[0], in[1], got)
		}
		for _, p := range got {
			if len(p.Source) == 0 && len(p.Target) == 0 {
				t.Errorf("Align(%q, %q) produced an empty pair", in[0], in[1])
			}
		}
		if score < 0 {
			t.Errorf("Align(%q, %q) score = %v, want non-negative", in[0], in[1], score)
		}
	}
}

func TestAlignScoreMonotonic(t *testing.T) {
	small := modelOf(map[[2]string]int{{"a", "x"}: 3})
	large := modelOf(map[[2]string]int{{"a", "x"}: 3, {"bc", "yz"}: 2, {"c", "z"}: 9})
	for _, in := range [][2]string{{"abc", "xyz"}, {"cab", "zxy"}, {"aa", "x"}} {
		_, s1, err := Align(chars(in[0]), chars(in[1]), small)
		if err != nil {
			t.Fatal(err)
		}
		_, s2, err := Align(chars(in[0]), chars(in[1]), large)
		if err != nil {
			t.Fatal(err)
		}
		if s2 < s1 {
			t.Errorf("%v: score decreased from %v to %v with a larger model", in, s1, s2)
		}
	}
}

func TestAlignDeterministic(t *testing.T) {
	model := modelOf(map[[2]string]int{{"a", "x"}: 2, {"b", "x"}: 2, {"ab", "xx"}: 2})
	first, s1, _ := Align(chars("abab"), chars("xxxx"), model)
	for range 10 {
		again, s2, _ := Align(chars("abab"), chars("xxxx"), model)
		if !reflect.DeepEqual(first, again) || s1 != s2 {
			t.Fatalf("non-deterministic alignment: %v (%v) vs %v (%v)", first, s1, again, s2)
		}
	}
}

func TestRestoreDetectsBrokenRoute(t *testing.T) {
	_, err := restore(chars("ab"), chars("x"), []step{{1, 1}})
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("short route: err = %v, want ErrInvariant", err)
	}
	_, err = restore(chars("ab"), chars("x"), []step{{3, 1}})
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("overrunning route: err = %v, want ErrInvariant", err)
	}
	_, err = restore(chars("a"), chars("x"), []step{{0, 0}, {1, 1}})
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("empty step: err = %v, want ErrInvariant", err)
	}
}

func TestCoalesce(t *testing.T) {
	got := coalesce([]step{{1, 0}, {0, 1}, {1, 0}, {2, 1}, {0, 1}, {1, 1}, {0, 2}})
	want := []step{{2, 0}, {0, 1}, {2, 1}, {0, 1}, {1, 1}, {0, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("coalesce = %v, want %v", got, want)
	}
}
