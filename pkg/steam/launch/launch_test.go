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

package launch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilwojcik93/SteamLibrarian/pkg/helpers/command"
)

// mockExecutor records started commands instead of running them.
type mockExecutor struct {
	calls [][]string
	err   error
}

func (m *mockExecutor) Start(_ context.Context, name string, args ...string) error {
	m.calls = append(m.calls, append([]string{name}, args...))
	return m.err
}

func (m *mockExecutor) StartWithOptions(
	ctx context.Context, _ command.StartOptions, name string, args ...string,
) error {
	return m.Start(ctx, name, args...)
}

func TestBuildRunURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		appID int
		args  []string
		want  string
	}{
		{
			name:  "plain launch",
			appID: 2277550,
			want:  "steam://rungameid/2277550",
		},
		{
			name:  "single argument",
			appID: 730,
			args:  []string{"-novid"},
			want:  "steam://run/730//-novid",
		},
		{
			name:  "multiple arguments joined with spaces",
			appID: 730,
			args:  []string{"-novid", "-windowed"},
			want:  "steam://run/730//-novid -windowed",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildRunURL(tt.appID, tt.args))
		})
	}
}

func TestLaunch_InvokesHandlerWithRunURL(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{}
	l := NewLauncherWithExecutor(Options{UseXdgOpen: true}, exec)

	require.NoError(t, l.Launch(context.Background(), 2277550))

	require.Len(t, exec.calls, 1)
	call := exec.calls[0]
	// The URI handler invocation differs per platform, but the run URL is
	// always the final argument.
	assert.Equal(t, "steam://rungameid/2277550", call[len(call)-1])
}

func TestLaunch_PassesArgsThroughURL(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{}
	l := NewLauncherWithExecutor(Options{Args: []string{"-novid"}}, exec)

	require.NoError(t, l.Launch(context.Background(), 730))

	require.Len(t, exec.calls, 1)
	call := exec.calls[0]
	assert.Equal(t, "steam://run/730//-novid", call[len(call)-1])
}

func TestLaunch_HandlerFailure(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{err: errors.New("no protocol handler")}
	l := NewLauncherWithExecutor(Options{}, exec)

	err := l.Launch(context.Background(), 730)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to launch Steam")
}
