// Package config loads the rollout controller settings.
//
// Top-level types:
//   - Config{Controller} — full tree parsed from the optional YAML file
//   - ControllerConfig — kubeconfig, namespace, workers, resync, max_retries,
//     used_annotation, version_annotation
//
// Load(path) applies defaults (2 workers, 10m resync, 5 retries,
// configMapUsed / configMapVersion annotations), then the YAML file when path
// is non-empty, then KUBECONFIG, WATCH_NAMESPACE and WORKERS from the
// environment, then validates.
package config
