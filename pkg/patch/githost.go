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

import "context"

// PullRequestRequest describes a pull request to open against a git host.
type PullRequestRequest struct {
	Title string
	Head  string
	Base  string
	Body  string
	Draft bool
}

// PullRequestResult is what a GitHost returns after opening a PR.
type PullRequestResult struct {
	Number int
	URL    string
}

// GitHost abstracts the external code-hosting API used to open pull
// requests after a patch is committed and pushed. No concrete
// implementation (e.g. a real GitHub client) is in scope here; callers
// wire one in, or use NoopGitHost when create_pr is never requested.
type GitHost interface {
	CreatePR(ctx context.Context, req PullRequestRequest) (*PullRequestResult, error)
}

// NoopGitHost rejects every CreatePR call. It is the default GitHost
// for an Applier that never receives create_pr=true.
type NoopGitHost struct{}

// CreatePR always fails: no git host is configured.
func (NoopGitHost) CreatePR(_ context.Context, _ PullRequestRequest) (*PullRequestResult, error) {
	return nil, errNoGitHost
}
