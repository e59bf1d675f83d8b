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

	"github.com/emilwojcik93/SteamLibrarian/pkg/config"
	"github.com/rs/zerolog/log"
)

// FindSteamDir locates the Steam installation directory. A configured
// install dir takes priority; otherwise common platform paths are probed.
// Returns an empty string when no installation is found.
func FindSteamDir(cfg *config.Instance) string {
	if cfg != nil {
		if dir := cfg.SteamInstallDir(); dir != "" {
			if _, err := os.Stat(dir); err == nil {
				log.Debug().Msgf("using user-configured Steam directory: %s", dir)
				return dir
			}
			log.Warn().Msgf("user-configured Steam directory not found: %s", dir)
		}
	}

	for _, path := range defaultSteamDirs() {
		if _, err := os.Stat(path); err == nil {
			log.Debug().Msgf("found Steam installation: %s", path)
			return path
		}
	}

	log.Debug().Msg("steam installation not found in default locations")
	return ""
}
