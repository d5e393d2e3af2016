package diff

import (
	"testing"

	"github.com/stretchr/testify/require"

	"envdiff/internal/model"
)

func file(name string, vars map[string]string) model.EnvFile {
	return model.EnvFile{Path: "/tmp/" + name, Name: name, Vars: vars}
}

func TestCompute_Statuses(t *testing.T) {
	files := []model.EnvFile{
		file("a.env", map[string]string{"SAME": "x", "DIFF": "1", "ONLY_A": "here"}),
		file("b.env", map[string]string{"SAME": "x", "DIFF": "2"}),
	}

	rows := Compute(files)
	require.Len(t, rows, 3)

	byKey := map[string]model.DiffRow{}
	for _, r := range rows {
		byKey[r.Key] = r
	}

	require.Equal(t, model.StatusIdentical, byKey["SAME"].Status)
	require.Equal(t, model.StatusDifferent, byKey["DIFF"].Status)
	require.Equal(t, model.StatusMissing, byKey["ONLY_A"].Status)

	require.Equal(t, []model.Value{model.Val("1"), model.Val("2")}, byKey["DIFF"].Values)
	require.Equal(t, []model.Value{model.Val("here"), model.None()}, byKey["ONLY_A"].Values)
}

func TestCompute_SortStatusThenKey(t *testing.T) {
	files := []model.EnvFile{
		file("a.env", map[string]string{"zeta": "1", "ALPHA": "1", "beta": "1", "GAMMA": "only"}),
		file("b.env", map[string]string{"zeta": "1", "ALPHA": "2", "beta": "1"}),
	}

	rows := Compute(files)
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	// Missing first, then different, then identical; alphabetical within each.
	require.Equal(t, []string{"GAMMA", "ALPHA", "beta", "zeta"}, keys)
}

func TestCompute_ZeroAndOneFile(t *testing.T) {
	require.Empty(t, Compute(nil))

	rows := Compute([]model.EnvFile{file("a.env", map[string]string{"A": "1", "B": "2"})})
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.Equal(t, model.StatusIdentical, r.Status)
	}
}

func TestCompute_EmptyValueIsPresent(t *testing.T) {
	files := []model.EnvFile{
		file("a.env", map[string]string{"K": ""}),
		file("b.env", map[string]string{"K": ""}),
	}
	rows := Compute(files)
	require.Len(t, rows, 1)
	require.Equal(t, model.StatusIdentical, rows[0].Status)
}

func TestClassify(t *testing.T) {
	require.Equal(t, model.StatusMissing,
		Classify([]model.Value{model.Val("x"), model.None()}))
	require.Equal(t, model.StatusDifferent,
		Classify([]model.Value{model.Val("x"), model.Val("y")}))
	require.Equal(t, model.StatusIdentical,
		Classify([]model.Value{model.Val("x"), model.Val("x")}))
	// Empty string is a present value, distinct from missing.
	require.Equal(t, model.StatusDifferent,
		Classify([]model.Value{model.Val(""), model.Val("x")}))
	require.Equal(t, model.StatusMissing,
		Classify([]model.Value{model.Val(""), model.None()}))
}
