// SteamLibrarian
// Copyright (c) 2026 The SteamLibrarian Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of SteamLibrarian.
//
// SteamLibrarian is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SteamLibrarian is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SteamLibrarian.  If not, see <http://www.gnu.org/licenses/>.

package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appmanifest_1.acf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseManifest_WellFormed(t *testing.T) {
	t.Parallel()

	path := writeTempManifest(t, `"AppState"
{
	"appid"		"2477340"
	"Universe"		"1"
	"name"		"Expeditions: A MudRunner Game"
	"StateFlags"		"4"
	"installdir"		"Expeditions"
	"LauncherPath"		"C:\\Steam\\steam.exe"
	"UserConfig"
	{
		"language"		"english"
	}
}`)

	info, err := ParseManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 2477340, info.AppID)
	assert.Equal(t, "Expeditions: A MudRunner Game", info.Name)
	assert.Equal(t, "Expeditions", info.InstallDir)
}

func TestParseManifest_NoInstallDir(t *testing.T) {
	t.Parallel()

	path := writeTempManifest(t, `"AppState"
{
	"appid"		"70"
	"name"		"Half-Life"
}`)

	info, err := ParseManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 70, info.AppID)
	assert.Empty(t, info.InstallDir)
}

func TestParseManifest_LooseFallback(t *testing.T) {
	t.Parallel()

	// Unbalanced braces break the grammar parser but not the key scan.
	path := writeTempManifest(t, `"AppState"
{
	"appid"		"70"
	"name"		"Half-Life"
	"installdir"		"Half-Life"
	{{{`)

	info, err := ParseManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 70, info.AppID)
	assert.Equal(t, "Half-Life", info.Name)
	assert.Equal(t, "Half-Life", info.InstallDir)
}

func TestParseManifest_DeclaredExecutables(t *testing.T) {
	t.Parallel()

	path := writeTempManifest(t, `"AppState"
{
	"appid"		"2477340"
	"name"		"Expeditions: A MudRunner Game"
	"installdir"		"Expeditions"
	"executable"		"Expeditions.exe"
	"launch"
	{
		"1"
		{
			"executable"		"bin/EditorTools.exe"
			"workingdir"		"bin"
		}
		"0"
		{
			"executable"		"Expeditions.exe"
			"workingdir"		""
		}
		"2"
		{
			"executable"		"Expeditions.sh"
			"oslist"		"linux"
		}
	}
}`)

	info, err := ParseManifest(path)
	require.NoError(t, err)
	// Top-level executable first, launch entries in index order, and the
	// index-0 duplicate of the top-level value collapsed.
	assert.Equal(t,
		[]string{"Expeditions.exe", "bin/EditorTools.exe", "Expeditions.sh"},
		info.LaunchExecutables)
}

func TestParseManifest_DeclaredExecutablesUnderConfig(t *testing.T) {
	t.Parallel()

	path := writeTempManifest(t, `"AppState"
{
	"appid"		"70"
	"name"		"Half-Life"
	"config"
	{
		"launch"
		{
			"0"
			{
				"executable"		"hl.exe"
			}
		}
	}
}`)

	info, err := ParseManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hl.exe"}, info.LaunchExecutables)
}

func TestParseManifest_DeclaredExecutablesLooseFallback(t *testing.T) {
	t.Parallel()

	// The grammar parser rejects the truncated file; the key scan must
	// still recover declared executables in file order, deduplicated.
	path := writeTempManifest(t, `"AppState"
{
	"appid"		"70"
	"name"		"Half-Life"
	"executable"		"hl.exe"
	"launch"
	{
		"0"
		{
			"executable"		"hl.exe"
		}
		"1"
		{
			"executable"		"hltv.exe"
	{{{`)

	info, err := ParseManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hl.exe", "hltv.exe"}, info.LaunchExecutables)
}

func TestParseManifest_NoDeclaredExecutables(t *testing.T) {
	t.Parallel()

	path := writeTempManifest(t, `"AppState"
{
	"appid"		"70"
	"name"		"Half-Life"
}`)

	info, err := ParseManifest(path)
	require.NoError(t, err)
	assert.Empty(t, info.LaunchExecutables)
}

func TestParseManifest_MissingRequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"no appid", `"AppState" { "name" "x" }`},
		{"no name", `"AppState" { "appid" "1" }`},
		{"empty", ""},
		{"appid not numeric", `"AppState" { "appid" "abc" "name" "x" }`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeTempManifest(t, tt.content)
			_, err := ParseManifest(path)
			assert.Error(t, err)
		})
	}
}

func TestParseManifest_FileMissing(t *testing.T) {
	t.Parallel()

	_, err := ParseManifest(filepath.Join(t.TempDir(), "appmanifest_absent.acf"))
	assert.Error(t, err)
}
