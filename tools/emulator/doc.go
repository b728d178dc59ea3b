// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package emulator serves an in-memory partitioned table over HTTP,
// configured via JSON, for local development and integration tests without
// an AWS account.
//
// Overview:
// Each configured server binds one port and holds its own set of emulated
// tables. A table keeps rows in memory with the same write-mode and
// concurrency-stamp semantics as the real store, and serves them in
// segments chained by opaque continuation tokens, so client code drains an
// emulated table exactly the way it drains a production one.
//
// Main features:
//   - Multi-server: several ports at once, each with independent tables.
//   - Seed data: tables start pre-loaded from the JSON config.
//   - Segment pagination: POST /segments returns one bounded batch plus the
//     token for the next, empty token meaning exhaustion.
//   - Write modes: insert, merge, replace, insertOrMerge and
//     insertOrReplace, with stamp preconditions enforced via the x-stamp
//     header.
//   - Observability: every request gets a correlation id and a structured
//     completion log.
//
// Routes per table:
//
//	GET    /tables/{name}/rows/{pk}/{rk}
//	PUT    /tables/{name}/rows/{pk}/{rk}?mode=insert   (body: {"fields": {...}})
//	DELETE /tables/{name}/rows/{pk}/{rk}               (x-stamp header)
//	POST   /tables/{name}/segments                     (body: {"token": "...", "limit": 0})
//	GET    /health
//
// Configuration (emulator.json):
//
//	[
//	  {
//	    "port": 8080,
//	    "tables": [
//	      {
//	        "name": "contacts",
//	        "segment_size": 100,
//	        "seed": [
//	          {
//	            "partition_key": "tenant-1",
//	            "row_key": "ada",
//	            "fields": { "name": "Ada", "status": "active" }
//	          }
//	        ]
//	      }
//	    ]
//	  }
//	]
//
// Programmatic start:
//
//	package main
//
//	import (
//	    "log"
//	    "sync"
//	    "github.com/raywall/tablestore-toolkit/tools/emulator/config"
//	)
//
//	func main() {
//	    var cfg config.Config
//	    if err := cfg.LoadFromFile("emulator.json"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    var wg sync.WaitGroup
//	    for _, server := range []config.ServerConfig(cfg) {
//	        wg.Add(1)
//	        go func(s config.ServerConfig) {
//	            defer wg.Done()
//	            s.Start()
//	        }(server)
//	    }
//	    wg.Wait()
//	}
//
// The memtable subpackage also implements the tablestore.Table contract
// directly, so tests can skip HTTP and wire a *memtable.Table straight into
// a tablestore.Client.
package emulator
