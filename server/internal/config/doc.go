// Package config resolves the config server settings once at process start.
//
// Config fields:
//   - Port              — listen port (default 8080, env PORT)
//   - ConfigMapFilePath — file served on GET / (default /app/config/config.txt,
//     env CONFIGMAP_FILE_PATH)
//   - ReadHeaderTimeout — http.Server header read limit (default 10s)
//   - ShutdownTimeout   — graceful shutdown limit (default 5s)
//
// Load(path) applies defaults, then the optional YAML settings file, then the
// environment, then validates. A PORT that is not a number in [1, 65535] is a
// startup error.
package config
