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
// Package envloader fills a configuration struct from environment
// variables, driven by the `env` and `envDefault` struct tags.
//
// The loader walks the struct through reflection and maps each tagged
// field to its variable. Supported field types are string, the int/uint
// families, bool, float, time.Duration (parsed with time.ParseDuration),
// string slices (comma-separated, blanks trimmed and dropped) and nested
// structs, including pointers to structs, which are allocated on demand.
// Fields without an env tag are left untouched.
//
// Basic usage:
//
//	// DB_HOST=localhost in the environment
//	type Config struct {
//	    DBHost  string        `env:"DB_HOST"`
//	    DBPort  int           `env:"DB_PORT" envDefault:"5432"`
//	    Timeout time.Duration `env:"DB_TIMEOUT" envDefault:"30s"`
//	    Origins []string      `env:"CORS_ORIGINS"`
//	}
//
//	var cfg Config
//	if err := envloader.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Nested structs are walked recursively:
//
//	type ServerConfig struct {
//	    Host string `env:"SERVER_HOST"`
//	}
//	type AppConfig struct {
//	    Server ServerConfig
//	}
//
// Load requires a pointer to a struct; anything else fails with an
// InvalidConfigError. A variable that cannot be converted to its field's
// type fails with a FieldError wrapping the conversion error, and field
// types outside the supported set fail with an UnsupportedTypeError.
// MustLoad panics instead of returning the error, for configurations the
// process cannot start without.
package envloader
