package envfile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"envdiff/internal/model"
)

func TestParse_LineKinds(t *testing.T) {
	text := "# header comment\n" +
		"FOO=bar\n" +
		"export BAZ=qux\n" +
		"\n" +
		"   \n" +
		"not a directive\n" +
		"1BAD=value\n" +
		"QUOTED=\"hello world\"\n" +
		"SINGLE='keep $literal'\n" +
		"TRAILING=value # a comment\n"

	lines := Parse(text)
	require.Len(t, lines, 10)

	require.Equal(t, KindComment, lines[0].Kind)
	require.Equal(t, KindAssignment, lines[1].Kind)
	require.Equal(t, "FOO", lines[1].Key)
	require.Equal(t, "bar", lines[1].Value)

	// export prefix stripped
	require.Equal(t, KindAssignment, lines[2].Kind)
	require.Equal(t, "BAZ", lines[2].Key)
	require.Equal(t, "qux", lines[2].Value)

	require.Equal(t, KindBlank, lines[3].Kind)
	require.Equal(t, KindBlank, lines[4].Kind)

	// no '=' and bad identifier are preserved as unknown
	require.Equal(t, KindUnknown, lines[5].Kind)
	require.Equal(t, "not a directive", lines[5].Raw)
	require.Equal(t, KindUnknown, lines[6].Kind)

	require.Equal(t, "hello world", lines[7].Value)
	require.Equal(t, "keep $literal", lines[8].Value)
	require.Equal(t, "value", lines[9].Value)
}

func TestParse_TrailingNewlineAbsorbed(t *testing.T) {
	require.Len(t, Parse("A=1\n"), 1)
	require.Len(t, Parse("A=1"), 1)
	require.Len(t, Parse("A=1\n\n"), 2) // real blank line survives
	require.Nil(t, Parse(""))
}

func TestParse_QuoteEscapes(t *testing.T) {
	lines := Parse(`K="say \"hi\" with \\ backslash"`)
	require.Len(t, lines, 1)
	require.Equal(t, `say "hi" with \ backslash`, lines[0].Value)
}

func TestVars_DuplicateLastWins(t *testing.T) {
	vars := Vars(Parse("A=first\nB=only\nA=last\n"))
	require.Equal(t, "last", vars["A"])
	require.Equal(t, "only", vars["B"])
}

func TestPatch_RoundTripUntouched(t *testing.T) {
	texts := []string{
		"FOO=bar\n",
		"# comment\n\nFOO=bar   \nexport BAZ='q'\n\n\n",
		"  WEIRD   =   spacing\nnot a directive\n",
	}
	for _, text := range texts {
		lines := Parse(text)
		got := Patch(lines, nil, nil)
		require.Equal(t, text, got, "round-trip must be byte-identical")
	}
}

func TestPatch_ModifyPreservesEverythingElse(t *testing.T) {
	text := "# settings\nFOO=old\n\nBAR=stay\n"
	got := Patch(Parse(text), map[string]model.Value{"FOO": model.Val("new")}, nil)
	require.Equal(t, "# settings\nFOO=new\n\nBAR=stay\n", got)
}

func TestPatch_DeleteDropsLine(t *testing.T) {
	got := Patch(Parse("KEY=old\n"), map[string]model.Value{"KEY": model.None()}, nil)
	require.Equal(t, "", got, "deleting the only line leaves empty content, no forced newline")

	got = Patch(Parse("A=1\nKEY=old\nB=2\n"), map[string]model.Value{"KEY": model.None()}, nil)
	require.Equal(t, "A=1\nB=2\n", got)
}

func TestPatch_DuplicateKeyOnlyLastTouched(t *testing.T) {
	text := "A=first\nA=second\n"
	got := Patch(Parse(text), map[string]model.Value{"A": model.Val("patched")}, nil)
	require.Equal(t, "A=first\nA=patched\n", got)

	got = Patch(Parse(text), map[string]model.Value{"A": model.None()}, nil)
	require.Equal(t, "A=first\n", got)
}

func TestPatch_AdditionsBeforeTrailingBlanks(t *testing.T) {
	text := "FOO=bar\n\n\n"
	got := Patch(Parse(text), nil, map[string]string{"NEW": "val"})
	require.Equal(t, "FOO=bar\nNEW=val\n\n\n", got)
}

func TestPatch_AdditionsSortedAndAppended(t *testing.T) {
	got := Patch(Parse("A=1\n"), nil, map[string]string{"Z": "9", "B": "2"})
	require.Equal(t, "A=1\nB=2\nZ=9\n", got)
}

func TestPatch_AdditionToEmptyFile(t *testing.T) {
	got := Patch(nil, nil, map[string]string{"A": "1"})
	require.Equal(t, "A=1\n", got)
}

func TestBuildLine_QuotingRule(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"plain", "KEY=plain"},
		{"", `KEY=""`},
		{"has space", `KEY="has space"`},
		{"tab\there", "KEY=\"tab\there\""},
		{"pound#sign", `KEY="pound#sign"`},
		{`dou"ble`, `KEY="dou\"ble"`},
		{"sin'gle", `KEY="sin'gle"`},
		{`back\slash`, `KEY="back\\slash"`},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BuildLine("KEY", tc.value), "value %q", tc.value)
	}
}

func TestQuotingRoundTrip(t *testing.T) {
	values := []string{
		"", " ", "a b", "#comment-ish", `"`, "'", `\`, `a\"b`,
		"trailing space ", " leading", "x # y", "plain",
	}
	for _, v := range values {
		text := Patch(nil, nil, map[string]string{"K": v})
		vars := Vars(Parse(text))
		got, ok := vars["K"]
		require.True(t, ok, "key lost for value %q", v)
		require.Equal(t, v, got, "value %q must survive the round trip", v)
	}
}

func TestValidKey(t *testing.T) {
	require.True(t, ValidKey("FOO"))
	require.True(t, ValidKey("_private"))
	require.True(t, ValidKey("A1_B2"))
	require.False(t, ValidKey(""))
	require.False(t, ValidKey("1BAD"))
	require.False(t, ValidKey("WITH-DASH"))
	require.False(t, ValidKey("WITH SPACE"))
}
