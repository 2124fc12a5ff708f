// Package file loads tool configuration from the local filesystem.
//
// Settings live in a TOML file (~/.pagestream/config.toml by default).
// Credentials are environment-driven: MATHPIX_APP_ID and MATHPIX_APP_KEY,
// with best-effort .env autoloading so a project directory can carry its
// own keys. Precedence is flags > environment > file > defaults; this
// package covers the environment/file/defaults part.
package file
