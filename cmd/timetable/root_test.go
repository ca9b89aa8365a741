package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

func writeInput(t *testing.T, dir string, header []interface{}, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	path := filepath.Join(dir, "horario.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"build", "--env-file", filepath.Join(t.TempDir(), "absent.env"), "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandBuildsTimetable(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir,
		[]interface{}{"PROFESSOR", "DIASEMANA", "HORAINICIAL", "HORAFINAL", "DISCIPLINA", "CODTURMA"},
		[]interface{}{"Ana", 2, "08:00", "10:00", "Math", "T1"},
		[]interface{}{"Ana", 4, "08:00", "10:00", "Physics", "T2"},
	)
	output := filepath.Join(dir, "quadro.xlsx")

	stdout, err := execute(t, "--input", input, "--output", output, "--format", "xlsx,pdf")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ANA\n")
	assert.Contains(t, stdout, "Spreadsheet saved as: "+output)
	assert.Contains(t, stdout, "PDF saved as: "+filepath.Join(dir, "quadro.pdf"))

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	monday, err := f.GetCellValue("Schedule", "B4")
	require.NoError(t, err)
	wednesday, err := f.GetCellValue("Schedule", "D5")
	require.NoError(t, err)
	assert.Equal(t, "Math", monday)
	assert.Equal(t, "T2", wednesday)
}

func TestRootCommandMissingColumn(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir,
		[]interface{}{"PROFESSOR", "DIASEMANA", "HORAINICIAL", "HORAFINAL", "DISCIPLINA"},
		[]interface{}{"Ana", 2, "08:00", "10:00", "Math"},
	)
	output := filepath.Join(dir, "resultado.xlsx")

	_, err := execute(t, "--input", input, "--output", output)
	require.Error(t, err)
	var missing *models.MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "CODTURMA", missing.Column)
	assert.Equal(t, appErrors.ExitMissingColumn, appErrors.FromError(err).ExitCode)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRootCommandUnreadableInput(t *testing.T) {
	_, err := execute(t, "--input", filepath.Join(t.TempDir(), "nope.xlsx"), "--output", filepath.Join(t.TempDir(), "r.xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ExitIO, appErrors.FromError(err).ExitCode)
}

func TestRootCommandRequiresInput(t *testing.T) {
	t.Setenv("INPUT_PATH", "")
	_, err := execute(t, "--source", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ExitUsage, appErrors.FromError(err).ExitCode)
}

func TestRootCommandRejectsStrayArguments(t *testing.T) {
	_, err := execute(t, "extra")
	require.Error(t, err)
	assert.Equal(t, appErrors.ExitUsage, appErrors.FromError(err).ExitCode)

	_, err = execute(t, "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, appErrors.ExitUsage, appErrors.FromError(err).ExitCode)
}

func TestRootCommandRejectsSharedOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir,
		[]interface{}{"PROFESSOR", "DIASEMANA", "HORAINICIAL", "HORAFINAL", "DISCIPLINA", "CODTURMA"},
		[]interface{}{"Ana", 2, "08:00", "10:00", "Math", "T1"},
	)
	output := filepath.Join(dir, "out.csv")

	stdout, err := execute(t, "--input", input, "--output", output, "--format", "xlsx,csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ExitUsage, appErrors.FromError(err).ExitCode)
	assert.Empty(t, stdout)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}
