// Copyright 2025 Tom Barlow
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

package secrets

import "context"

// SecretProvider resolves secret references for one URI scheme (env, file,
// keychain, ...). Implementations must respect ctx cancellation and must
// never log the resolved value.
type SecretProvider interface {
	// Scheme returns the provider's URI scheme identifier, e.g. "env".
	Scheme() string

	// Resolve retrieves the secret value for reference. Reference syntax is
	// provider-specific (bare name for env, absolute path for file, ...).
	Resolve(ctx context.Context, reference string) (string, error)
}

// SecretProviderRegistry routes a "scheme:reference" secret reference to the
// provider registered for scheme.
type SecretProviderRegistry interface {
	Register(provider SecretProvider) error
	Resolve(ctx context.Context, reference string) (string, error)
	GetProvider(scheme string) SecretProvider
}

// InheritEnvConfig controls environment variable inheritance for the env
// secret provider; it unmarshals from either a bare bool or an object with
// an allowlist.
type InheritEnvConfig struct {
	Enabled   bool     `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Allowlist []string `yaml:"allowlist,omitempty" json:"allowlist,omitempty"`
}

// UnmarshalYAML supports both boolean and object syntax for InheritEnvConfig.
func (c *InheritEnvConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var boolValue bool
	if err := unmarshal(&boolValue); err == nil {
		c.Enabled = boolValue
		c.Allowlist = nil
		return nil
	}
	type plain InheritEnvConfig
	return unmarshal((*plain)(c))
}
