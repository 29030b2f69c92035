// Package platform contains OS and external tooling glue: URL normalization,
// filesystem helpers, and URL list-file parsing.
package platform
