// Copyright 2025 Poiesic Systems
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

// Package remote defines the client abstraction for the knowledge service
// that ingested files are uploaded to.
//
// The package is designed around a single interface, KnowledgeClient, with
// two implementation sub-packages:
//
//   - remote/openwebui: Production client speaking the Open WebUI REST API
//   - remote/mock: Test double with injectable behavior and call counters
//
// Connection settings are carried by Config, which is passed explicitly to
// client constructors:
//
//	cfg := remote.NewConfig(
//	    remote.WithBaseURL("http://localhost:3000"),
//	    remote.WithToken(token),
//	)
//	client, err := openwebui.NewClient(cfg)
//
// Any error returned by a client is treated as a failure by callers. Non-2xx
// responses are reported as *StatusError so the status and body can be logged.
package remote
