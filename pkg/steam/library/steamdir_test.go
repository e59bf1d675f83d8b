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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilwojcik93/SteamLibrarian/pkg/config"
)

func configWithInstallDir(t *testing.T, dir string) *config.Instance {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.toml",
		[]byte("config_schema = 1\n\n[steam]\ninstall_dir = '"+dir+"'\n"), 0o600))
	cfg, err := config.NewConfig(fs, "/cfg/config.toml", config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestFindSteamDir_ConfigOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := configWithInstallDir(t, dir)
	assert.Equal(t, dir, FindSteamDir(cfg))
}

func TestFindSteamDir_NilConfigDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { FindSteamDir(nil) })
}
