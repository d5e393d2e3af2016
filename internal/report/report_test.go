package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"envdiff/internal/model"
)

func fixtures() ([]model.EnvFile, []model.DiffRow) {
	files := []model.EnvFile{
		{Path: "/p/a.env", Name: "a.env", Vars: map[string]string{"SAME": "x", "ONLY_A": "v"}},
		{Path: "/p/b.env", Name: "b.env", Vars: map[string]string{"SAME": "x"}},
	}
	rows := []model.DiffRow{
		{Key: "ONLY_A", Values: []model.Value{model.Val("v"), model.None()}, Status: model.StatusMissing},
		{Key: "SAME", Values: []model.Value{model.Val("x"), model.Val("x")}, Status: model.StatusIdentical},
	}
	return files, rows
}

func TestGenerate(t *testing.T) {
	files, rows := fixtures()

	text := Generate(files, rows, false)
	require.Contains(t, text, "a.env")
	require.Contains(t, text, "ONLY_A")
	require.Contains(t, text, "(not set)")
	require.NotContains(t, text, "SAME", "identical rows hidden unless verbose")

	verbose := Generate(files, rows, true)
	require.Contains(t, verbose, "SAME")
}

func TestBuildJSON(t *testing.T) {
	files, rows := fixtures()

	res := BuildJSON(files, rows)
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded JSONResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Files, 2)
	require.Len(t, decoded.Rows, 2)
	require.Equal(t, "missing", decoded.Rows[0].Status)
	require.Nil(t, decoded.Rows[0].Values[1], "missing value serializes as null")
	require.Equal(t, "v", *decoded.Rows[0].Values[0])
}
