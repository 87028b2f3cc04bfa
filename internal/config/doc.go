// Package config manages patchstack configuration.
//
// It handles:
//   - The fixed layout of the host project (pin file, patch series, vendored directory)
//   - The upstream location and tracked branch
//   - Optional per-project overrides read from .patchstack.yaml
package config
