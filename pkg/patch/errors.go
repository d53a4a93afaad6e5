// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package patch

import "errors"

// ErrPatchInvalid is returned by Apply when the patch fails validation
// before any worktree is created; the caller should inspect
// ApplyResult.Validation for the issue list.
var ErrPatchInvalid = errors.New("patch: rejected by validator")

// ErrApplyFailed is returned when neither -p1 nor -p0 could apply the
// patch cleanly against the base branch.
var ErrApplyFailed = errors.New("patch: failed to apply with -p1 or -p0")

var errNoGitHost = errors.New("patch: no git host configured")
