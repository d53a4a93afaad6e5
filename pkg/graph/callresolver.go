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

package graph

import (
	"runtime"
	"sync"

	"github.com/kraklabs/codectx/pkg/parser"
)

// CallResolver turns parser.UnresolvedCall values into CallEdge values
// once every file in a repository has been parsed. Python/JavaScript/Java
// calls are rarely fully qualified the way Go calls are, so resolution
// here is by simple name: a same-file function wins over any other
// same-name candidate in the repo, and a globally unique name wins when
// the file has no local definition. An ambiguous name with more than one
// repo-wide candidate and no same-file match is left unresolved rather
// than guessing.
type CallResolver struct {
	byFile   map[string]map[string]string // file path -> func name -> func id
	byName   map[string][]string          // func name -> []func id (repo-wide)
}

// NewCallResolver returns an empty resolver.
func NewCallResolver() *CallResolver {
	return &CallResolver{
		byFile: make(map[string]map[string]string),
		byName: make(map[string][]string),
	}
}

// BuildIndex populates the resolver from every function extracted across
// a repository's files. Call after all files have been parsed.
func (r *CallResolver) BuildIndex(functions []parser.FunctionEntity) {
	for _, fn := range functions {
		if r.byFile[fn.FilePath] == nil {
			r.byFile[fn.FilePath] = make(map[string]string)
		}
		r.byFile[fn.FilePath][fn.Name] = fn.ID
		r.byName[fn.Name] = append(r.byName[fn.Name], fn.ID)
	}
}

// ResolveCalls resolves every unresolved call, deduplicating (caller,
// callee) pairs. Sequential for small call sets, a bounded worker pool
// (capped at 8, mirroring the teacher's call-resolution threshold) for
// large ones — the indices are read-only after BuildIndex so concurrent
// reads are safe without locking.
func (r *CallResolver) ResolveCalls(calls []parser.UnresolvedCall) []parser.CallEdge {
	if len(calls) < 1000 {
		return r.resolveSequential(calls)
	}
	return r.resolveParallel(calls)
}

func (r *CallResolver) resolveSequential(calls []parser.UnresolvedCall) []parser.CallEdge {
	seen := make(map[string]bool)
	var resolved []parser.CallEdge
	for _, call := range calls {
		calleeID := r.resolve(call)
		if calleeID == "" {
			continue
		}
		key := call.CallerID + "->" + calleeID
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, parser.CallEdge{CallerID: call.CallerID, CalleeID: calleeID})
	}
	return resolved
}

func (r *CallResolver) resolveParallel(calls []parser.UnresolvedCall) []parser.CallEdge {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}

	jobs := make(chan int, len(calls))
	type result struct{ callerID, calleeID string }
	results := make(chan result, len(calls))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				calleeID := r.resolve(calls[i])
				if calleeID != "" {
					results <- result{calls[i].CallerID, calleeID}
				}
			}
		}()
	}
	for i := range calls {
		jobs <- i
	}
	close(jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[string]bool)
	var resolved []parser.CallEdge
	for res := range results {
		key := res.callerID + "->" + res.calleeID
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, parser.CallEdge{CallerID: res.callerID, CalleeID: res.calleeID})
	}
	return resolved
}

func (r *CallResolver) resolve(call parser.UnresolvedCall) string {
	if byName, ok := r.byFile[call.FilePath]; ok {
		if id, ok := byName[call.CalleeName]; ok {
			return id
		}
	}
	candidates := r.byName[call.CalleeName]
	if len(candidates) == 1 {
		return candidates[0]
	}
	return ""
}
