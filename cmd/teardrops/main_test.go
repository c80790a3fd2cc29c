package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/teardrop/internal/board"
	"github.com/piwi3910/teardrop/internal/model"
	"github.com/piwi3910/teardrop/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*flag.FlagSet, *options) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := registerFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs, opts
}

func TestResolveParams(t *testing.T) {
	cfg := model.DefaultAppConfig()

	fs, opts := parse(t)
	p, err := resolveParams(fs, opts, cfg)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultParams(), p)

	fs, opts = parse(t, "-preset", "Straight", "-follow")
	p, err = resolveParams(fs, opts, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Segs, "from preset")
	assert.Equal(t, 90.0, p.VPercent, "from preset")
	assert.True(t, p.FollowTracks, "flag overrides preset")

	fs, opts = parse(t, "-hpercent", "45", "-segs", "4")
	p, err = resolveParams(fs, opts, cfg)
	require.NoError(t, err)
	assert.Equal(t, 45.0, p.HPercent)
	assert.Equal(t, 4, p.Segs)
}

func TestResolveParamsErrors(t *testing.T) {
	cfg := model.DefaultAppConfig()

	fs, opts := parse(t, "-preset", "Nope")
	_, err := resolveParams(fs, opts, cfg)
	assert.Error(t, err)

	fs, opts = parse(t, "-segs", "1")
	_, err = resolveParams(fs, opts, cfg)
	assert.ErrorIs(t, err, model.ErrSegsRange)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "b.json", outputPath(&options{boardPath: "b.json"}))
	assert.Equal(t, "dir/b.json", outputPath(&options{boardPath: "dir/b.dxf"}))
	assert.Equal(t, "x.json", outputPath(&options{boardPath: "b.json", outPath: "x.json"}))
}

func TestReportPath(t *testing.T) {
	cfg := model.DefaultAppConfig()
	assert.Equal(t, "r.pdf", reportPath("r.pdf", cfg))
	cfg.OutputDir = "/tmp/out"
	assert.Equal(t, filepath.Join("/tmp/out", "r.pdf"), reportPath("r.pdf", cfg))
	assert.Equal(t, "/abs/r.pdf", reportPath("/abs/r.pdf", cfg))
}

func TestLoadBoardImportsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.csv")
	content := "Type,X,Y,X2,Y2,Width,Layer,Net,Angle,Diameter,Height,Drill\n" +
		"via,0,0,,,,,GND,,800,,400\n" +
		"track,0,0,5000,0,200,F.Cu,GND\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	doc, err := loadBoard(path)
	require.NoError(t, err)
	assert.Equal(t, "board.csv", doc.Name)
	assert.Len(t, doc.Vias, 1)
	assert.Len(t, doc.Tracks, 1)
}

func TestLoadBoardFailedImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Type,X,Y\nvia,a,b\n"), 0644))

	_, err := loadBoard(path)
	assert.Error(t, err)
}

func TestRunSetAndRemove(t *testing.T) {
	dir := t.TempDir()
	boardPath := filepath.Join(dir, "board.json")
	configPath := filepath.Join(dir, "config.json")

	doc := board.New("cli")
	doc.Vias = []model.Via{model.NewVia(model.Pt(0, 0), 800, 400, "GND")}
	doc.Tracks = []model.Track{model.NewTrack(model.Pt(0, 0), model.Pt(5000, 0), 200, model.FrontCopper, "GND")}
	require.NoError(t, project.SaveBoard(boardPath, doc))

	xlsxPath := filepath.Join(dir, "report.xlsx")
	gerberPrefix := filepath.Join(dir, "td")
	require.NoError(t, run([]string{"-config", configPath, "-board", boardPath, "-xlsx", xlsxPath, "-gerber", gerberPrefix, "set"}))

	placed, err := project.LoadBoard(boardPath)
	require.NoError(t, err)
	assert.Len(t, placed.Teardrops(), 1)
	assert.FileExists(t, boardPath+project.BackupSuffix)
	assert.FileExists(t, xlsxPath)
	assert.FileExists(t, gerberPrefix+"-F_Cu.gbr")

	cfg, err := project.LoadAppConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{boardPath}, cfg.RecentBoards)

	require.NoError(t, run([]string{"-config", configPath, "-board", boardPath, "rm"}))
	removed, err := project.LoadBoard(boardPath)
	require.NoError(t, err)
	assert.Empty(t, removed.Teardrops())
}

func TestRunUsageErrors(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	assert.Error(t, run([]string{"-config", configPath}))
	assert.Error(t, run([]string{"-config", configPath, "set"}), "board is required")
	assert.Error(t, run([]string{"-config", configPath, "-board", "x.json", "bogus"}))
}

func TestRunSettingsCommands(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	presetsPath := filepath.Join(dir, "presets.json")
	base := []string{"-config", configPath, "-presets", presetsPath}

	presetFile := filepath.Join(dir, "fine.json")
	fine := model.Preset{Name: "Fine", Description: "small flares", Params: model.DefaultParams()}
	fine.Params.HPercent = 20
	require.NoError(t, project.ExportPreset(presetFile, fine))

	require.NoError(t, run(append(base, "-file", presetFile, "import-preset")))
	require.NoError(t, run(append(base, "-file", presetFile, "import-preset")))
	custom, err := project.LoadCustomPresets(presetsPath)
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, 20.0, custom[0].Params.HPercent)

	backupFile := filepath.Join(dir, "backup", "settings.json")
	require.NoError(t, run(append(base, "-file", backupFile, "backup")))
	assert.FileExists(t, backupFile)

	restoredConfig := filepath.Join(dir, "restored", "config.json")
	restoredPresets := filepath.Join(dir, "restored", "presets.json")
	require.NoError(t, run([]string{"-config", restoredConfig, "-presets", restoredPresets, "-file", backupFile, "restore"}))
	restored, err := project.LoadCustomPresets(restoredPresets)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "Fine", restored[0].Name)

	assert.Error(t, run(append(base, "backup")), "-file is required")
}
